package live

import (
	"bufio"
	"io"
	"strings"
)

const maxFrameLine = 1 << 20

// Frame is one dispatched server-sent event
type Frame struct {
	Event string
	Data  string
}

// Decoder reads server-sent event frames. Comments, id and retry fields
// are skipped; multi-line data is joined with newlines.
type Decoder struct {
	sc *bufio.Scanner
}

func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxFrameLine)
	return &Decoder{sc: sc}
}

// Next returns the next frame carrying data, or io.EOF once the stream ends
func (d *Decoder) Next() (Frame, error) {
	var (
		event string
		data  []string
	)
	for d.sc.Scan() {
		line := strings.TrimSuffix(d.sc.Text(), "\r")
		if line == "" {
			if len(data) == 0 {
				event = ""
				continue
			}
			return Frame{Event: event, Data: strings.Join(data, "\n")}, nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event = value
		case "data":
			data = append(data, value)
		}
	}
	if err := d.sc.Err(); err != nil {
		return Frame{}, err
	}
	return Frame{}, io.EOF
}
