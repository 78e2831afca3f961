package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/az-ai-labs/numparse"
	"github.com/az-ai-labs/numparse/internal/config"
)

// writer renders the matches of each input.
type writer interface {
	write(name string, matches []numparse.Match) error
	close() error
}

func newWriter(format string, w io.Writer) (writer, error) {
	switch format {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		return &jsonWriter{enc: enc}, nil
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &yamlWriter{enc: enc}, nil
	case config.FormatText:
		return &textWriter{w: bufio.NewWriter(w)}, nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// jsonWriter emits one JSON array per input, one per line.
type jsonWriter struct {
	enc *json.Encoder
}

func (j *jsonWriter) write(_ string, matches []numparse.Match) error {
	if matches == nil {
		matches = []numparse.Match{}
	}
	return j.enc.Encode(matches)
}

func (j *jsonWriter) close() error { return nil }

// yamlMatch mirrors numparse.Match's JSON layout for YAML output.
type yamlMatch struct {
	Match  string `yaml:"match"`
	Start  int    `yaml:"start"`
	End    int    `yaml:"end"`
	Values any    `yaml:"values"`
}

// yamlWriter emits one YAML document per input.
type yamlWriter struct {
	enc *yaml.Encoder
}

func (y *yamlWriter) write(_ string, matches []numparse.Match) error {
	docs := make([]yamlMatch, len(matches))
	for i, m := range matches {
		docs[i] = yamlMatch{Match: m.Text, Start: m.Start, End: m.End, Values: m.Values.Any()}
	}
	return y.enc.Encode(docs)
}

func (y *yamlWriter) close() error { return y.enc.Close() }

// textWriter emits one line per match: name:start-end, the match and its
// values as JSON, tab separated.
type textWriter struct {
	w *bufio.Writer
}

func (t *textWriter) write(name string, matches []numparse.Match) error {
	for _, m := range matches {
		values, err := json.Marshal(m.Values)
		if err != nil {
			return fmt.Errorf("%s: encoding %q: %w", name, m.Text, err)
		}
		if _, err := fmt.Fprintf(t.w, "%s:%d-%d\t%s\t%s\n", name, m.Start, m.End, m.Text, values); err != nil {
			return err
		}
	}
	return nil
}

func (t *textWriter) close() error { return t.w.Flush() }
