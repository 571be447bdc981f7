package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/ja7ad/uepsim/pkg/store"
)

// outputs holds the optional report files.
type outputs struct {
	csvF  *os.File
	csvW  *csv.Writer
	jsonF *os.File
	htmlF *os.File

	points []point
}

func openOutputs(o opts, classes int) (*outputs, error) {
	out := &outputs{}

	create := func(path string) (*os.File, error) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		return os.Create(path)
	}

	var err error
	if o.csvPath != "" {
		if out.csvF, err = create(o.csvPath); err != nil {
			return nil, err
		}
		out.csvW = csv.NewWriter(out.csvF)
		_ = out.csvW.Write(csvHeader(classes))
		out.csvW.Flush()
	}
	if o.jsonPath != "" {
		if out.jsonF, err = create(o.jsonPath); err != nil {
			out.close()
			return nil, err
		}
	}
	if o.htmlPath != "" {
		if out.htmlF, err = create(o.htmlPath); err != nil {
			out.close()
			return nil, err
		}
	}
	return out, nil
}

// write records one point and streams it to the CSV file.
func (o *outputs) write(p point) error {
	o.points = append(o.points, p)
	if o.csvW == nil {
		return nil
	}
	_ = o.csvW.Write(csvRecord(p))
	o.csvW.Flush()
	return o.csvW.Error()
}

// finish writes the JSON and HTML reports.
func (o *outputs) finish(pack *store.Pack) error {
	if o.jsonF != nil {
		enc := json.NewEncoder(o.jsonF)
		enc.SetIndent("", "  ")
		if err := enc.Encode(pack); err != nil {
			return err
		}
	}
	if o.htmlF != nil {
		if err := writeHTML(o.htmlF, pack, o.points); err != nil {
			return err
		}
	}
	return nil
}

func (o *outputs) close() {
	if o.csvW != nil {
		o.csvW.Flush()
	}
	for _, f := range []*os.File{o.csvF, o.jsonF, o.htmlF} {
		if f != nil {
			_ = f.Close()
		}
	}
}

func csvHeader(classes int) []string {
	h := []string{"overhead", "n", "nblocks", "drop_rate", "avg_ripple", "avg_encode_sec", "avg_decode_sec"}
	for i := 0; i < classes; i++ {
		h = append(h,
			fmt.Sprintf("errors_%d", i), fmt.Sprintf("per_%d", i),
			fmt.Sprintf("per_lo_%d", i), fmt.Sprintf("per_hi_%d", i))
	}
	return h
}

func csvRecord(p point) []string {
	rec := []string{
		fmtFloat(p.Overhead), strconv.Itoa(p.N), strconv.Itoa(p.NBlocks),
		fmtFloat(p.DropRate), fmtFloat(p.AvgRipple), fmtFloat(p.EncodeSec), fmtFloat(p.DecodeSec),
	}
	for _, c := range p.Classes {
		rec = append(rec, strconv.Itoa(c.Errors), fmtFloat(c.Rate), fmtFloat(c.Lower), fmtFloat(c.Upper))
	}
	return rec
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printTableHeader(tw *tabwriter.Writer, classes int) {
	cols := []string{"OVERHEAD", "N", "BLOCKS"}
	for i := 0; i < classes; i++ {
		cols = append(cols, fmt.Sprintf("PER[%d] (95%% CI)", i))
	}
	cols = append(cols, "DROP", "RIPPLE", "DEC (ms)")

	dashes := make([]string, len(cols))
	for i, c := range cols {
		dashes[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	tw.Flush()
}

func printTableRow(tw *tabwriter.Writer, p point) {
	fmt.Fprint(tw, tableRow(p))
	tw.Flush()
}

func tableRow(p point) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.3f\t%d\t%d", p.Overhead, p.N, p.NBlocks)
	for _, c := range p.Classes {
		fmt.Fprintf(&b, "\t%.3e [%.2e, %.2e]", c.Rate, c.Lower, c.Upper)
	}
	fmt.Fprintf(&b, "\t%.4f\t%.2f\t%.3f\n", p.DropRate, p.AvgRipple, p.DecodeSec*1e3)
	return b.String()
}

func csvLikeHeader(classes int) string {
	return "# " + strings.Join(csvHeader(classes), ", ")
}

func printCsvLike(p point) {
	fmt.Println(strings.Join(csvRecord(p), ", "))
}

func writeHTML(w io.Writer, pack *store.Pack, points []point) error {
	type view struct {
		Pack   *store.Pack
		Points []point
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, view{Pack: pack, Points: points}); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

var tpl = template.Must(template.New("rep").Funcs(template.FuncMap{
	"ms": func(sec float64) float64 { return sec * 1e3 },
}).Parse(`<!doctype html>
<html lang="en"><meta charset="utf-8">
<title>UEP Simulation Report</title>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:20px}
h1,h2{margin:0 0 8px}
table{border-collapse:collapse;width:100%;font-size:14px}
th,td{border:1px solid #ddd;padding:6px 8px;text-align:right}
th:first-child,td:first-child{text-align:left}
ul{margin:6px 0 14px;padding-left:20px}
.small{color:#555}
</style>

<h1><a href="https://github.com/ja7ad/uepsim" target="_blank" rel="noopener noreferrer" style="color:inherit;text-decoration:none;">UEP Simulation Report</a></h1>

{{with .Pack.Metadata}}
<p class="small">
{{.Timestamp.Format "2006-01-02 15:04:05"}}{{if .Revision}} &nbsp;|&nbsp; revision <code>{{.Revision}}</code>{{end}}
</p>

<h2>Configuration</h2>
<ul>
<li>Ks: {{.Config.Ks}} &nbsp; RFs: {{.Config.RFs}} &nbsp; EF: {{.Config.EF}}</li>
<li>c: {{.Config.C}} &nbsp; delta: {{.Config.Delta}}</li>
<li>channel: {{.Config.Kind}}{{if .Config.IIDPer}} per={{.Config.IIDPer}}{{end}}{{if .Config.MarkovPGB}} pGB={{.Config.MarkovPGB}} pBG={{.Config.MarkovPBG}}{{end}}</li>
<li>seed: {{.Config.Seed}}</li>
</ul>
{{end}}

<h2>Sweep</h2>
<table>
<thead>
<tr>
<th>overhead</th><th>n</th><th>blocks</th>
{{if .Points}}{{with index .Points 0}}{{range $i, $c := .Classes}}<th>PER[{{$i}}]</th><th>95% CI</th>{{end}}{{end}}{{end}}
<th>drop</th><th>ripple</th><th>decode (ms)</th>
</tr>
</thead>
<tbody>
{{range .Points}}
<tr>
<td style="text-align:left">{{printf "%.3f" .Overhead}}</td>
<td>{{.N}}</td>
<td>{{.NBlocks}}</td>
{{range .Classes}}<td>{{printf "%.3e" .Rate}}</td><td>[{{printf "%.2e" .Lower}}, {{printf "%.2e" .Upper}}]</td>{{end}}
<td>{{printf "%.4f" .DropRate}}</td>
<td>{{printf "%.2f" .AvgRipple}}</td>
<td>{{printf "%.3f" (ms .DecodeSec)}}</td>
</tr>
{{end}}
</tbody>
</table>
</html>`))
