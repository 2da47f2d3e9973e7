package http

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/frankcohen/cloudcity"
)

// PageTitle heads every generated page.
const PageTitle = "Starling Reflections Cloud City file services"

const (
	folderIcon   = "\U0001F4C1"
	documentIcon = "\U0001F4C3"
)

var listingPage = template.Must(template.New(`listing`).Parse(strings.TrimSpace(`
<!doctype html>
<html>
<head>
  <title>{{ .Title }}</title>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <style>
    ul { list-style: none; padding: 0; }
    li.even { background: #f2f2f2; }
    li.odd { background: #ffffff; }
  </style>
</head>
<body>
<h3>{{ .Title }}</h3>
{{- if .Parent }}
<a href="../">..</a><br>
{{- end }}
<ul>
{{- range .Rows }}
<li class="{{ .Class }}"><a href="{{ .Href }}">{{ .Icon }}&nbsp;{{ .Name }}</a></li>
{{- end }}
</ul>
</body>
</html>
`) + "\n"))

var uploadPage = template.Must(template.New(`upload`).Parse(strings.TrimSpace(`
<!doctype html>
<html>
<head>
  <title>{{ .Title }}</title>
  <meta charset="utf-8">
</head>
<body>
<h3>{{ .Title }}</h3>
<form enctype="multipart/form-data" method="post" action="/">
  <input name="file" type="file"/>
  <input type="submit" value="upload"/>
</form>
</body>
</html>
`) + "\n"))

type listingRow struct {
	Name  string
	Href  string
	Icon  string
	Class string
}

// WriteListing renders entries, which must already be in listing order, as an HTML page.
// Links are relative so the page must be served from a URL ending in a slash.
func WriteListing(w http.ResponseWriter, parent bool, entries []cloudcity.DirEntry) error {
	rows := make([]listingRow, 0, len(entries))
	for i, entry := range entries {
		row := listingRow{
			Name:  entry.Name,
			Href:  "./" + url.PathEscape(entry.Name),
			Icon:  documentIcon,
			Class: "even",
		}
		if entry.IsDir {
			row.Href += "/"
			row.Icon = folderIcon
		}
		if i%2 == 1 {
			row.Class = "odd"
		}
		rows = append(rows, row)
	}

	data := struct {
		Title  string
		Parent bool
		Rows   []listingRow
	}{Title: PageTitle, Parent: parent, Rows: rows}

	return writePage(w, listingPage, data)
}

// WriteUploadForm renders the single file upload form.
func WriteUploadForm(w http.ResponseWriter) error {
	return writePage(w, uploadPage, struct{ Title string }{Title: PageTitle})
}

func writePage(w http.ResponseWriter, page *template.Template, data any) error {
	var buf bytes.Buffer
	if err := page.Execute(&buf, data); err != nil {
		WriteError(w, http.StatusInternalServerError, "render page")
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, err := buf.WriteTo(w)
	return err
}

// IndexedListing encodes entries as a JSON object keyed "1", "2", ... in slice order.
// Each value holds the file name and its modification time in fractional epoch seconds.
type IndexedListing []cloudcity.DirEntry

type indexedEntry struct {
	File string `json:"file"`
	When string `json:"when"`
}

func (l IndexedListing) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range l {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(strconv.Itoa(i + 1))
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(indexedEntry{
			File: entry.Name,
			When: FormatWhen(entry),
		})
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FormatWhen renders the modification time as epoch seconds with a fraction, e.g. "1700000000.25".
func FormatWhen(entry cloudcity.DirEntry) string {
	seconds := float64(entry.ModTime.UnixNano()) / 1e9
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}
