// Command leadsync deletes customer profiles from the Insider platform and loads
// cleaned lead exports into the reporting database.
package main

import (
	_ "time/tzdata"
)

func main() {
	Execute()
}
