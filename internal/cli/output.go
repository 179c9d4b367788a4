package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/JonMunkholm/csv2db/internal/core"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// fileReport is the outcome of one command-line path.
type fileReport struct {
	Path    string            `json:"path"`
	Results []core.LoadResult `json:"results"`
}

// errorReport is the JSON form of a failed command.
type errorReport struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code,omitempty"`
}

// PrintJSON writes v as indented JSON followed by a newline.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTable writes rows under upper-cased column headers, separated by two
// spaces. Nothing is written without columns.
func PrintTable(w io.Writer, columns []string, rows [][]string) {
	if len(columns) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

func printReports(w io.Writer, format string, reports []fileReport) error {
	if format == OutputJSON {
		if reports == nil {
			reports = []fileReport{}
		}
		return PrintJSON(w, reports)
	}

	var rows [][]string
	for _, r := range reports {
		for _, res := range r.Results {
			rows = append(rows, []string{
				res.FileName,
				strconv.Itoa(res.TotalRecords),
				strconv.Itoa(res.InsertedRecords),
				strconv.Itoa(len(res.SkippedRecords)),
			})
		}
	}
	PrintTable(w, []string{"file", "total", "inserted", "skipped"}, rows)

	for _, r := range reports {
		for _, res := range r.Results {
			if len(res.SkippedRecords) == 0 {
				continue
			}
			fmt.Fprintf(w, "\n%s: skipped records\n", res.FileName)
			for _, s := range res.SkippedRecords {
				fmt.Fprintf(w, "  #%d  %s\n", s.RecordIndex, s.Message)
			}
		}
	}
	return nil
}

func printSchema(w io.Writer, format string, schema core.TableSchema) error {
	if format == OutputJSON {
		return PrintJSON(w, schema)
	}

	rows := make([][]string, 0, len(schema.Columns))
	for _, c := range schema.Columns {
		maxLen := ""
		if c.MaxLength != nil {
			maxLen = strconv.Itoa(*c.MaxLength)
		}
		rows = append(rows, []string{c.Name, c.DataType, strconv.FormatBool(c.Nullable), maxLen})
	}
	PrintTable(w, []string{"column", "type", "nullable", "max_length"}, rows)
	return nil
}

func printError(w io.Writer, format string, err error) {
	if format == OutputJSON {
		report := errorReport{Error: err.Error()}
		if core.IsUserFacing(err) {
			msg := core.MapError(err)
			report.Message, report.Action, report.Code = msg.Message, msg.Action, msg.Code
		}
		_ = PrintJSON(w, report)
		return
	}

	if core.IsUserFacing(err) {
		fmt.Fprintf(w, "Error: %s\n  %v\n", core.FormatUserError(err), err)
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
}
