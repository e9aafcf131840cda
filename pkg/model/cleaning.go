// pkg/model/cleaning.go
package model

// CleaningReport summarizes what the cleaner did to one frame
type CleaningReport struct {
	DateColumns    []string // Columns parsed as dates
	NumericColumns []string // Columns coerced to numbers
	PhoneColumns   []string // Columns reduced to digits
	DroppedColumns []string // Deny-list columns removed
	DatesNulled    int      // Non-empty values that failed date parsing
	NumbersNulled  int      // Non-empty values that failed numeric coercion
	PhonesNulled   int      // Phone values with no digits
	Truncated      int      // Text values cut to the maximum length
}

// Merge adds the counters and column lists of other into r
func (r *CleaningReport) Merge(other CleaningReport) {
	r.DateColumns = appendUnique(r.DateColumns, other.DateColumns...)
	r.NumericColumns = appendUnique(r.NumericColumns, other.NumericColumns...)
	r.PhoneColumns = appendUnique(r.PhoneColumns, other.PhoneColumns...)
	r.DroppedColumns = appendUnique(r.DroppedColumns, other.DroppedColumns...)
	r.DatesNulled += other.DatesNulled
	r.NumbersNulled += other.NumbersNulled
	r.PhonesNulled += other.PhonesNulled
	r.Truncated += other.Truncated
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}
