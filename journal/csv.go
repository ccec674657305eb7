package journal

import (
	"encoding/csv"
	"os"
	"time"
)

type CSV struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "time", "identity", "command", "text", "outcome", "detail"}); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) Record(e Entry) error {
	err := j.w.Write([]string{
		e.ID,
		e.Time.Format(time.RFC3339),
		e.Identity,
		e.Command,
		e.Text,
		e.Outcome,
		e.Detail,
	})
	if err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}
