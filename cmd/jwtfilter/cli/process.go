package cli

import (
	"bufio"
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/jwtfilter/config"
	"github.com/effective-security/jwtfilter/filter"
	"github.com/effective-security/jwtfilter/record"
	"github.com/effective-security/xlog"
)

const maxLineSize = 16 * 1024 * 1024

// ProcessCmd packs or unpacks JSON records
type ProcessCmd struct {
	Cfg  string `required:"" help:"filter configuration file, YAML or JSON"`
	In   string `help:"input file with one JSON record per line, or '-' for stdin" default:"-"`
	Mode string `help:"override the configured mode: pack or unpack"`
}

// Run the command
func (a *ProcessCmd) Run(ctx *Cli) error {
	s, err := config.Load(a.Cfg)
	if err != nil {
		return err
	}
	if a.Mode != "" {
		m, err := config.ParseMode(a.Mode)
		if err != nil {
			return err
		}
		s.Mode = m.String()
	}

	cfg, err := config.Validate(s)
	if err != nil {
		return err
	}
	f, err := filter.New(cfg, filter.WithEventSink(filter.Sinks{filter.LogSink{}, filter.MetricsSink{}}))
	if err != nil {
		return err
	}

	r, err := ctx.OpenFile(a.In)
	if err != nil {
		return err
	}
	defer r.Close()

	out := bufio.NewWriter(ctx.Writer())

	var total, emitted int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for line := 1; scanner.Scan(); line++ {
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		rec, err := record.Parse(data)
		if err != nil {
			return errors.WithMessagef(err, "invalid record at line %d", line)
		}

		total++
		res := f.Process(ctx.Context(), rec)
		if res.Record == nil {
			continue
		}
		js, err := res.Record.MarshalJSON()
		if err != nil {
			return errors.WithMessagef(err, "unable to encode record at line %d", line)
		}
		if _, err = out.Write(append(js, '\n')); err != nil {
			return errors.WithMessage(err, "unable to write record")
		}
		emitted++
	}
	if err = scanner.Err(); err != nil {
		return errors.WithMessage(err, "unable to read records")
	}
	if err = out.Flush(); err != nil {
		return errors.WithMessage(err, "unable to write record")
	}

	logger.KV(xlog.INFO, "mode", cfg.Mode, "records", total, "emitted", emitted)
	return nil
}
