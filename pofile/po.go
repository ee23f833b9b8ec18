// Package pofile reads and writes gettext PO files used as phrase
// dictionaries: msgid holds the English phrase, msgstr the Malay
// translation.
//
// Only what a dictionary needs is modelled. Plural forms are read
// (msgstr[0] becomes the translation) but never written back out.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Entry is one message of a PO file.
type Entry struct {
	// Comments are translator comments ("# ...").
	Comments []string
	// References are "#:" source locations.
	References []string
	// Flags are "#," flags such as fuzzy.
	Flags []string

	MsgCtxt string
	MsgID   string
	MsgStr  string

	// Plural is set when the entry carried msgid_plural; MsgStr then holds msgstr[0].
	Plural bool
	// Obsolete marks "#~" entries.
	Obsolete bool
	// Line is the 1-based line where the entry starts.
	Line int
}

// IsFuzzy reports whether the entry carries the fuzzy flag.
func (e *Entry) IsFuzzy() bool {
	for _, f := range e.Flags {
		if f == "fuzzy" {
			return true
		}
	}
	return false
}

// Usable reports whether the entry can serve as a dictionary pair:
// not the header, not obsolete or fuzzy, and translated.
func (e *Entry) Usable() bool {
	return e.MsgID != "" && e.MsgStr != "" && !e.Obsolete && !e.IsFuzzy()
}

// File is a parsed PO file.
type File struct {
	// Header is the metadata entry (msgid ""), nil when absent.
	Header *Entry
	// Entries are the message entries in file order.
	Entries []*Entry
}

// HeaderField returns a header field value by name (case-insensitive).
func (f *File) HeaderField(name string) string {
	if f.Header == nil {
		return ""
	}
	for _, line := range strings.Split(f.Header.MsgStr, "\n") {
		if idx := strings.Index(line, ":"); idx > 0 {
			if strings.EqualFold(strings.TrimSpace(line[:idx]), name) {
				return strings.TrimSpace(line[idx+1:])
			}
		}
	}
	return ""
}

// Stats returns (total, usable) counts over non-obsolete entries.
func (f *File) Stats() (total, usable int) {
	for _, e := range f.Entries {
		if e.Obsolete {
			continue
		}
		total++
		if e.Usable() {
			usable++
		}
	}
	return total, usable
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse reads a PO file.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var current *Entry
	var field string // field that a bare "..." continuation line extends
	lineNum := 0

	flush := func() {
		if current == nil {
			return
		}
		if current.MsgID == "" && !current.Obsolete && current.MsgCtxt == "" {
			f.Header = current
		} else {
			f.Entries = append(f.Entries, current)
		}
		current = nil
		field = ""
	}

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current == nil {
			current = &Entry{Line: lineNum}
		}

		if strings.HasPrefix(line, "#~") {
			current.Obsolete = true
			line = strings.TrimSpace(line[2:])
		}

		if strings.HasPrefix(line, "#") {
			switch {
			case strings.HasPrefix(line, "#:"):
				current.References = append(current.References, strings.TrimSpace(line[2:]))
			case strings.HasPrefix(line, "#,"):
				for _, flag := range strings.Split(line[2:], ",") {
					if flag = strings.TrimSpace(flag); flag != "" {
						current.Flags = append(current.Flags, flag)
					}
				}
			case strings.HasPrefix(line, "#.") || strings.HasPrefix(line, "#|"):
				// extracted comments and previous msgids carry nothing a dictionary uses
			default:
				current.Comments = append(current.Comments, strings.TrimPrefix(line[1:], " "))
			}
			continue
		}

		keyword, rest, _ := strings.Cut(line, " ")
		switch {
		case keyword == "msgctxt":
			current.MsgCtxt = unquote(rest)
			field = keyword
		case keyword == "msgid":
			current.MsgID = unquote(rest)
			field = keyword
		case keyword == "msgid_plural":
			current.Plural = true
			field = "" // the English plural form is not kept
		case keyword == "msgstr":
			current.MsgStr = unquote(rest)
			field = keyword
		case strings.HasPrefix(keyword, "msgstr["):
			idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(keyword, "msgstr["), "]"))
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid msgstr index: %s", lineNum, line)
			}
			field = ""
			if idx == 0 {
				current.MsgStr = unquote(rest)
				field = "msgstr"
			}
		case strings.HasPrefix(line, `"`):
			val := unquote(line)
			switch field {
			case "msgctxt":
				current.MsgCtxt += val
			case "msgid":
				current.MsgID += val
			case "msgstr":
				current.MsgStr += val
			}
		default:
			return nil, fmt.Errorf("line %d: unexpected content: %s", lineNum, line)
		}
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}
	return f, nil
}

// ParseFile reads a PO file from disk.
func ParseFile(path string) (*File, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()

	f, err := Parse(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// NewDictionary builds a PO file for a target language from ordered pairs.
func NewDictionary(lang string, pairs [][2]string) *File {
	f := &File{Header: MakeHeader("malaykit", lang)}
	for _, p := range pairs {
		f.Entries = append(f.Entries, &Entry{MsgID: p[0], MsgStr: p[1]})
	}
	return f
}

// MakeHeader creates a PO header entry for a dictionary in language lang.
func MakeHeader(project, lang string) *Entry {
	now := time.Now().UTC().Format("2006-01-02 15:04+0000")
	return &Entry{
		MsgStr: fmt.Sprintf(
			"Project-Id-Version: %s\n"+
				"PO-Revision-Date: %s\n"+
				"Language: %s\n"+
				"MIME-Version: 1.0\n"+
				"Content-Type: text/plain; charset=UTF-8\n"+
				"Content-Transfer-Encoding: 8bit\n",
			project, now, lang,
		),
	}
}

// Write writes the file. Obsolete entries are dropped.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	first := true
	if f.Header != nil {
		writeEntry(bw, f.Header)
		first = false
	}
	for _, e := range f.Entries {
		if e.Obsolete {
			continue
		}
		if !first {
			bw.WriteByte('\n')
		}
		first = false
		writeEntry(bw, e)
	}
	return bw.Flush()
}

// WriteFile writes the file to disk.
func (f *File) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}

func writeEntry(w *bufio.Writer, e *Entry) {
	for _, c := range e.Comments {
		fmt.Fprintf(w, "# %s\n", c)
	}
	for _, ref := range e.References {
		fmt.Fprintf(w, "#: %s\n", ref)
	}
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}
	if e.MsgCtxt != "" {
		writeQuotedField(w, "msgctxt", e.MsgCtxt)
	}
	writeQuotedField(w, "msgid", e.MsgID)
	writeQuotedField(w, "msgstr", e.MsgStr)
}

// writeQuotedField writes a field, splitting multi-line values after each \n.
func writeQuotedField(w *bufio.Writer, field, value string) {
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(w, "%s %s\n", field, quote(value))
		return
	}
	fmt.Fprintf(w, "%s \"\"\n", field)
	parts := strings.SplitAfter(value, "\n")
	for _, part := range parts {
		if part != "" {
			fmt.Fprintf(w, "%s\n", quote(part))
		}
	}
}

// quote produces a PO-style quoted string.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// unquote removes PO-style quoting.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '\\', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
