package output

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/yndnr/tokcodec-go/internal/cli/connection"
	"github.com/yndnr/tokcodec-go/internal/core/service"
	"github.com/yndnr/tokcodec-go/pkg/token"
)

// TableFormatter renders data for humans.
type TableFormatter struct {
	NoHeaders bool
}

// Format renders token results as labeled sections and anything else as a
// key-value table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case nil:
		return nil
	case *Table:
		return v.render(w, !f.NoHeaders)
	case *service.InspectResponse:
		return renderInspect(w, v)
	case *service.NormalizeResponse:
		return renderNormalize(w, v)
	case *service.DecodeResponse:
		return renderDecode(w, v)
	case *service.EncodeResponse:
		return section(w, "Base64 Encoded Token", v.EncodedToken)
	case *service.GenerateResponse:
		return renderGenerate(w, v)
	case *connection.Health:
		return renderHealth(w, v)
	case token.Fields:
		return renderFields(w, v)
	}

	table, err := kvTable(data)
	if err != nil {
		return err
	}
	return table.render(w, !f.NoHeaders)
}

// renderInspect mirrors the interactive token view: both forms, the field
// listing for full tokens, and a regenerated token.
func renderInspect(w io.Writer, r *service.InspectResponse) error {
	if r.Truncated {
		truncationWarning(w, &r.NormalizeResponse)
		fmt.Fprintln(w)
	}
	if err := section(w, "Plain Token", r.PlainToken); err != nil {
		return err
	}
	if err := section(w, "Base64 Encoded Token", r.EncodedToken); err != nil {
		return err
	}
	if r.ShowFields {
		fmt.Fprintln(w, "Decoded Token Fields")
		if err := renderFields(w, r.Fields); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}
	if r.Generated != nil {
		fmt.Fprintln(w, "---")
		fmt.Fprintln(w, "Generate New Auth Token")
		return renderGenerate(w, r.Generated)
	}
	return nil
}

func renderNormalize(w io.Writer, r *service.NormalizeResponse) error {
	fmt.Fprintf(w, "Detected: %s\n", r.Form)
	if r.Truncated {
		truncationWarning(w, r)
	}
	fmt.Fprintln(w)
	if err := section(w, "Plain Token", r.PlainToken); err != nil {
		return err
	}
	if err := section(w, "Base64 Encoded Token", r.EncodedToken); err != nil {
		return err
	}
	fmt.Fprintln(w, "Fields")
	return renderFields(w, r.Fields)
}

func truncationWarning(w io.Writer, r *service.NormalizeResponse) {
	fmt.Fprintf(w, "Warning: %d segments, only the first %d were read\n", r.Segments, len(r.Fields))
}

func renderDecode(w io.Writer, r *service.DecodeResponse) error {
	if err := section(w, "Plain Token", r.PlainToken); err != nil {
		return err
	}
	fmt.Fprintln(w, "Fields")
	return renderFields(w, r.Fields)
}

func renderGenerate(w io.Writer, r *service.GenerateResponse) error {
	if err := section(w, "Plain Auth Token", r.PlainToken); err != nil {
		return err
	}
	if err := section(w, "Encoded Auth Token", r.EncodedToken); err != nil {
		return err
	}
	tw := columns(w)
	fmt.Fprintf(tw, "  Issued:\t%s\n", r.Issued)
	fmt.Fprintf(tw, "  Expires:\t%s\n", r.Expires)
	return tw.Flush()
}

func renderHealth(w io.Writer, h *connection.Health) error {
	if h.Status == "healthy" {
		fmt.Fprintf(w, "✓ Server is healthy\n")
	} else {
		fmt.Fprintf(w, "✗ Server is unhealthy: %s\n", h.Status)
	}
	fmt.Fprintf(w, "  Target:  %s\n", h.Target)
	if h.Version != "" {
		fmt.Fprintf(w, "  Version: %s\n", h.Version)
	}
	return nil
}

// renderFields lists fields in token order.
func renderFields(w io.Writer, fields token.Fields) error {
	tw := columns(w)
	for _, f := range fields {
		fmt.Fprintf(tw, "  %s:\t%s\n", f.Name, f.Value)
	}
	return tw.Flush()
}

func section(w io.Writer, title, body string) error {
	_, err := fmt.Fprintf(w, "%s\n  %s\n\n", title, body)
	return err
}

// columns aligns tab separated cells with two spaces of padding.
func columns(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// kvTable lists the exported fields of a struct in declaration order, or
// the entries of a map sorted by key.
func kvTable(data any) (*Table, error) {
	v := reflect.Indirect(reflect.ValueOf(data))
	if !v.IsValid() {
		return &Table{}, nil
	}

	switch v.Kind() {
	case reflect.Struct:
		t := &Table{Headers: []string{"FIELD", "VALUE"}}
		for _, f := range reflect.VisibleFields(v.Type()) {
			if f.Anonymous || !f.IsExported() {
				continue
			}
			t.AddRow(columnName(f), cell(v.FieldByIndex(f.Index)))
		}
		return t, nil
	case reflect.Map:
		t := &Table{Headers: []string{"KEY", "VALUE"}}
		for it := v.MapRange(); it.Next(); {
			t.AddRow(cell(it.Key()), cell(it.Value()))
		}
		slices.SortFunc(t.Rows, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
		return t, nil
	}
	return nil, fmt.Errorf("cannot render %s as a table", v.Kind())
}

// columnName is the json tag name of f, falling back to the Go name.
func columnName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// cell renders one value. Empty values show as "-" and collections as
// their size.
func cell(v reflect.Value) string {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return "-"
	}

	switch v.Kind() {
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	}
	return fmt.Sprint(v.Interface())
}

// Table is a list of rows with optional headers.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends one row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with its headers.
func (t *Table) Render(w io.Writer) error {
	return t.render(w, true)
}

func (t *Table) render(w io.Writer, headers bool) error {
	tw := columns(w)
	if headers && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
