package jsmodule

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Style selects the layout of the generated file.
type Style int

const (
	// Compact writes the literal without any whitespace.
	Compact Style = iota
	// Pretty indents the literal by two spaces.
	Pretty
)

// Export selects how the data becomes visible to the page that loads it.
type Export string

const (
	// Global assigns the constant to window, for a plain <script> include.
	Global Export = "global"
	// Module exports the constant through module.exports for CommonJS.
	Module Export = "module"
)

// DefaultName is the identifier the visualizer looks for.
const DefaultName = "datasetSamples"

// ParseExport validates an export mode name.
func ParseExport(s string) (Export, error) {
	switch e := Export(strings.ToLower(strings.TrimSpace(s))); e {
	case Global, Module:
		return e, nil
	default:
		return "", fmt.Errorf("unknown export mode %q (want %q or %q)", s, Global, Module)
	}
}

// Options controls Encode.
type Options struct {
	Style  Style
	Export Export
	// Name of the declared constant; DefaultName when empty.
	Name string
}

func (o Options) name() string {
	if o.Name == "" {
		return DefaultName
	}
	return o.Name
}

// Encode writes c as a JavaScript source file:
//
//	const datasetSamples={...};window.datasetSamples=datasetSamples;
func Encode(w io.Writer, c *Collection, opts Options) error {
	literal, err := c.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode datasets: %w", err)
	}
	name := opts.name()

	var export string
	switch opts.Export {
	case Global, "":
		export = fmt.Sprintf("window.%s=%s;", name, name)
		if opts.Style == Pretty {
			export = fmt.Sprintf("window.%s = %s;", name, name)
		}
	case Module:
		export = fmt.Sprintf("module.exports={%s};", name)
		if opts.Style == Pretty {
			export = fmt.Sprintf("module.exports = { %s };", name)
		}
	default:
		return fmt.Errorf("unknown export mode %q", opts.Export)
	}

	bw := bufio.NewWriter(w)
	switch opts.Style {
	case Compact:
		fmt.Fprintf(bw, "const %s=", name)
		bw.Write(literal)
		bw.WriteString(";")
		bw.WriteString(export)
	case Pretty:
		var indented bytes.Buffer
		if err := json.Indent(&indented, literal, "", "  "); err != nil {
			return fmt.Errorf("indent datasets: %w", err)
		}
		fmt.Fprintf(bw, "const %s = ", name)
		indented.WriteTo(bw)
		bw.WriteString(";\n\n")
		bw.WriteString(export)
		bw.WriteString("\n")
	default:
		return fmt.Errorf("unknown style %d", opts.Style)
	}
	return bw.Flush()
}

// Decode reads a file produced by Encode back into a collection. Only the
// object literal assigned to the first const declaration is read; the export
// statement after it is ignored.
func Decode(r io.Reader) (*Collection, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(src))
	if !strings.HasPrefix(text, "const ") {
		return nil, errors.New("not a dataset file: missing const declaration")
	}
	eq := strings.IndexByte(text, '=')
	if eq < 0 {
		return nil, errors.New("not a dataset file: missing assignment")
	}
	var c Collection
	dec := json.NewDecoder(strings.NewReader(text[eq+1:]))
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode datasets: %w", err)
	}
	return &c, nil
}

// WriteFile encodes c to path through a temporary file in the same directory,
// so readers never see a partially written file. The file is created 0666
// less the process umask. It returns the final size.
func WriteFile(path string, c *Collection, opts Options) (int64, error) {
	name := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	tmp, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, c, opts); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("rename to %s: %w", path, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
