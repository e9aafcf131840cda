package main

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/David-Botos/leadsync/pkg/connector"
	"github.com/David-Botos/leadsync/pkg/converter"
	"github.com/David-Botos/leadsync/pkg/loader"
)

// queryCmd runs one SQL statement against the configured database and prints the rows
var queryCmd = &cobra.Command{
	Use:   "query SQL",
	Short: "Run a SQL statement against the load target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		conn, err := connector.NewConnector(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer conn.Close()

		ld := loader.NewLoader(conn, converter.NewTypeConverter(logger), logger)
		rows, err := ld.Query(ctx, args[0])
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			pterm.Info.Println("No rows")
			return nil
		}

		_ = pterm.DefaultTable.WithHasHeader().WithData(tableData(rows)).Render()
		pterm.Printf("%d rows\n", len(rows))
		return nil
	},
}

// tableData renders query rows with the columns in name order
func tableData(rows []map[string]interface{}) pterm.TableData {
	cols := make([]string, 0, len(rows[0]))
	for name := range rows[0] {
		cols = append(cols, name)
	}
	sort.Strings(cols)

	data := pterm.TableData{cols}
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			if v := row[c]; v != nil {
				line[i] = fmt.Sprint(v)
			}
		}
		data = append(data, line)
	}
	return data
}
