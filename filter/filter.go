// Package filter implements the record pack and unpack engine.
//
// A Filter is built once from a validated config.Config and is safe for
// concurrent use. Per-record failures never escape as errors: each record is
// either emitted, passed through unmodified, or dropped, and every failure is
// reported to the EventSink.
package filter

import (
	"context"
	"time"

	"github.com/effective-security/jwtfilter/codec"
	"github.com/effective-security/jwtfilter/config"
	"github.com/effective-security/jwtfilter/jwe"
	"github.com/effective-security/jwtfilter/jwt"
	"github.com/effective-security/jwtfilter/metricskey"
	"github.com/effective-security/jwtfilter/record"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/jwtfilter", "filter")

// Filter packs or unpacks records
type Filter struct {
	cfg   *config.Config
	codec codec.Codec
	sink  EventSink
}

// Option configures Filter
type Option func(*Filter)

// WithEventSink specifies the sink of diagnostic events
func WithEventSink(sink EventSink) Option {
	return func(f *Filter) {
		f.sink = sink
	}
}

// WithCodec overrides the codec built from the configuration
func WithCodec(c codec.Codec) Option {
	return func(f *Filter) {
		f.codec = c
	}
}

// New returns Filter for the configuration
func New(cfg *config.Config, opts ...Option) (*Filter, error) {
	if cfg == nil {
		return nil, codec.NewError(codec.KindConfiguration, "configuration not provided")
	}
	f := &Filter{
		cfg:  cfg,
		sink: nopSink{},
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.codec == nil {
		c, err := newCodec(cfg)
		if err != nil {
			return nil, err
		}
		f.codec = c
	}

	logger.KV(xlog.INFO,
		"mode", cfg.Mode,
		"codec", f.codec.Name(),
		"verify", cfg.UnpackVerify)
	return f, nil
}

func newCodec(cfg *config.Config) (codec.Codec, error) {
	switch cfg.Codec {
	case config.CodecJWT:
		verify := cfg.Mode == config.Unpack && cfg.UnpackVerify != config.VerifyNone
		return jwt.NewCodec(cfg.Algorithm, cfg.Secret.Bytes(), verify)
	case config.CodecJWE:
		c := new(jwe.Codec)
		var err error
		if cfg.Mode == config.Pack {
			c.Encrypter, err = jwe.NewEncrypter(cfg.PublicKey, cfg.KeyAlgorithm, cfg.ContentEncryption, cfg.Serialization == config.JSON)
		} else {
			c.Decrypter, err = jwe.NewDecrypter(cfg.PrivateKey, cfg.KeyAlgorithm)
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, codec.NewError(codec.KindUnsupportedMode, "unsupported codec: %v", cfg.Codec)
}

// Config returns the configuration of the filter
func (f *Filter) Config() *config.Config {
	return f.cfg
}

// Process packs or unpacks the record according to the configured mode.
// The input record is never modified.
func (f *Filter) Process(ctx context.Context, rec *record.Record) *Result {
	var res *Result
	if f.cfg.Mode == config.Pack {
		res = f.Pack(ctx, rec)
	} else {
		res = f.Unpack(ctx, rec)
	}
	metricskey.FilterRecords.IncrCounter(1, f.cfg.Mode.String(), res.Outcome.String())
	return res
}

// Pack returns the record with the selected payload packed into a token
func (f *Filter) Pack(ctx context.Context, rec *record.Record) *Result {
	payload, ok := SelectForPack(rec, f.cfg)
	if !ok {
		f.emit(ctx, &Event{
			Outcome: PassThrough,
			Reason:  ReasonMissingField,
			Field:   f.cfg.PackFromField,
		})
		return &Result{Record: rec.Clone(), Outcome: PassThrough}
	}

	start := time.Now()
	token, err := f.codec.Encode(payload)
	metricskey.PerfTokenOperation.MeasureSince(start, f.codec.Name(), "encode")
	if err != nil {
		f.emit(ctx, &Event{
			Outcome: Drop,
			Kind:    codec.KindOf(err),
			Reason:  ReasonEncode,
			Err:     err,
		})
		return &Result{Outcome: Drop, Err: err}
	}

	return &Result{
		Record:  AssemblePack(rec, token, f.cfg),
		Outcome: Emit,
		Valid:   true,
	}
}

// Unpack returns the record with the token decoded and placed
// according to the unpack destination
func (f *Filter) Unpack(ctx context.Context, rec *record.Record) *Result {
	cfg := f.cfg
	v, ok := rec.Get(cfg.UnpackFromField)
	if !ok {
		f.emit(ctx, &Event{
			Outcome: PassThrough,
			Reason:  ReasonMissingField,
			Field:   cfg.UnpackFromField,
		})
		return &Result{Record: rec.Clone(), Outcome: PassThrough}
	}

	token, ok := v.(string)
	if !ok {
		err := codec.NewError(codec.KindDecoding, "token field %q is not a string", cfg.UnpackFromField)
		return f.fail(ctx, rec, nil, err)
	}

	start := time.Now()
	dr, err := f.codec.Decode(token)
	metricskey.PerfTokenOperation.MeasureSince(start, f.codec.Name(), "decode")
	if err != nil {
		return f.fail(ctx, rec, nil, err)
	}
	if !dr.Valid {
		err = dr.Err
		if err == nil {
			err = codec.ErrVerification
		}
		return f.fail(ctx, rec, dr.Payload, err)
	}

	extracted := SelectForUnpack(dr.Payload, cfg.Fields, cfg.ValidityField, true)
	return &Result{
		Record:  AssembleUnpack(rec, extracted, cfg),
		Outcome: Emit,
		Valid:   true,
	}
}

// fail classifies an unpack failure.
// On Emit, the unverified payload is placed as for a valid token with the
// validity marker set to false; without a payload the input record is annotated.
func (f *Filter) fail(ctx context.Context, rec, payload *record.Record, err error) *Result {
	cfg := f.cfg
	kind := codec.KindOf(err)
	outcome := Classify(err, cfg.UnpackVerify)
	f.emit(ctx, &Event{
		Outcome: outcome,
		Kind:    kind,
		Reason:  reasonOf(kind),
		Field:   cfg.UnpackFromField,
		Err:     err,
	})

	res := &Result{Outcome: outcome, Err: err}
	switch outcome {
	case PassThrough:
		res.Record = rec.Clone()
	case Emit:
		if payload != nil {
			extracted := SelectForUnpack(payload, cfg.Fields, cfg.ValidityField, false)
			res.Record = AssembleUnpack(rec, extracted, cfg)
		} else {
			res.Record = annotate(rec, cfg)
		}
	}
	return res
}

func (f *Filter) emit(ctx context.Context, e *Event) {
	e.Mode = f.cfg.Mode
	e.Codec = f.codec.Name()
	f.sink.Handle(ctx, e)
}
