package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "blog-generator/internal/common/errors"
	"blog-generator/internal/common/logger"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	MsgGenerated = "Blog Generated Successfully!"

	OutcomeOK = "ok"
)

// TextGenerator produces blog text for a topic.
type TextGenerator interface {
	Generate(ctx context.Context, topic string) (string, error)
}

// Recorder receives one observation per invocation.
type Recorder interface {
	ObserveInvocation(ctx context.Context, outcome string, statusCode int, duration time.Duration)
}

// Tracker is implemented by recorders that also count in-flight invocations.
type Tracker interface {
	Track() func()
}

type Recorders []Recorder

func (rs Recorders) ObserveInvocation(ctx context.Context, outcome string, statusCode int, duration time.Duration) {
	for _, r := range rs {
		r.ObserveInvocation(ctx, outcome, statusCode, duration)
	}
}

// Track starts tracking on every member that supports it.
func (rs Recorders) Track() func() {
	var done []func()
	for _, r := range rs {
		if t, ok := r.(Tracker); ok {
			done = append(done, t.Track())
		}
	}
	return func() {
		for _, d := range done {
			d()
		}
	}
}

type ServiceDependencies struct {
	Generator TextGenerator
	Store     ArtifactStore
	Notifier  Notifier // optional
	Recorder  Recorder // optional
	Logger    logger.Logger
	Tracer    trace.Tracer     // defaults to the global provider
	Clock     func() time.Time // defaults to time.Now
}

// Service runs decode, generate and store for one invocation at a time. It
// holds no per-invocation state and is safe for concurrent use.
type Service struct {
	bucket    string
	generator TextGenerator
	artifacts ArtifactStore
	notifier  Notifier
	recorder  Recorder
	logger    logger.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

func NewService(bucket string, deps ServiceDependencies) *Service {
	s := &Service{
		bucket:    bucket,
		generator: deps.Generator,
		artifacts: deps.Store,
		notifier:  deps.Notifier,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		tracer:    deps.Tracer,
		now:       deps.Clock,
	}
	if s.logger == nil {
		s.logger = logger.NewNoOpLogger()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("blog-generator/internal/blog")
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Invocation is the full outcome of one pipeline run.
type Invocation struct {
	RequestID string
	Result    *Result
	Err       *apperrors.StandardError
	Envelope  Envelope
}

// Process runs the pipeline and returns typed errors.
func (s *Service) Process(ctx context.Context, ev *Event) (*Result, error) {
	topic, err := s.decode(ctx, ev)
	if err != nil {
		return nil, err
	}

	text, err := s.generate(ctx, topic)
	if err != nil {
		return nil, err
	}

	key := ArtifactKey(s.now())
	if err := s.store(ctx, key, text); err != nil {
		return nil, err
	}

	result := &Result{Topic: topic, Bucket: s.bucket, Key: key, Size: len(text)}
	s.notify(ctx, result)
	return result, nil
}

// Stage spans are ended from a defer so a panicking collaborator still
// closes them before Invoke recovers.

func (s *Service) decode(ctx context.Context, ev *Event) (topic string, err error) {
	_, span := s.tracer.Start(ctx, "blog.decode")
	defer func() { endSpan(span, err) }()

	return DecodeTopic(ev)
}

func (s *Service) generate(ctx context.Context, topic string) (text string, err error) {
	ctx, span := s.tracer.Start(ctx, "blog.generate", trace.WithAttributes(attribute.Int("topic.length", len(topic))))
	defer func() { endSpan(span, err) }()

	text, err = s.generator.Generate(ctx, topic)
	if err == nil && text == "" {
		err = apperrors.NewModelEmptyOutputError("generator returned empty text", nil)
	}
	if err != nil && !apperrors.IsCode(err, apperrors.ErrCodeModelEmptyOutput) {
		err = apperrors.NewModelEmptyOutputError("generation failed", err)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (s *Service) store(ctx context.Context, key, text string) (err error) {
	ctx, span := s.tracer.Start(ctx, "blog.store", trace.WithAttributes(
		attribute.String("s3.bucket", s.bucket),
		attribute.String("s3.key", key),
	))
	defer func() { endSpan(span, err) }()

	err = s.artifacts.Store(ctx, s.bucket, key, text)
	if err != nil && !apperrors.IsCode(err, apperrors.ErrCodeStorageWriteFailure) {
		err = apperrors.NewStorageWriteFailureError(s.bucket, key, err)
	}
	return err
}

// Invoke runs the pipeline and always produces an envelope, including when a
// collaborator panics.
func (s *Service) Invoke(ctx context.Context, ev *Event) (inv Invocation) {
	inv.RequestID = uuid.NewString()
	start := time.Now()
	log := s.logger.With(map[string]interface{}{"requestId": inv.RequestID})

	ctx, span := s.tracer.Start(ctx, "blog.invoke", trace.WithAttributes(attribute.String("request.id", inv.RequestID)))
	untrack := s.track()
	defer func() {
		defer untrack()
		if r := recover(); r != nil {
			inv.Result = nil
			inv.Err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			inv.Envelope = errorEnvelope(inv.Err)
		}

		outcome := OutcomeOK
		if inv.Err != nil {
			outcome = strings.ToLower(string(inv.Err.Code))
			span.SetStatus(codes.Error, inv.Err.Message)
			log.Error("Blog generation failed", map[string]interface{}{
				"errorCode":  string(inv.Err.Code),
				"statusCode": inv.Envelope.StatusCode,
				"message":    inv.Err.Message,
				"details":    inv.Err.Details,
			})
		} else {
			log.Info("Blog generated", map[string]interface{}{
				"s3Key":    inv.Result.Key,
				"bucket":   inv.Result.Bucket,
				"duration": time.Since(start).String(),
			})
		}
		span.SetAttributes(attribute.Int("http.status_code", inv.Envelope.StatusCode))
		span.End()

		if s.recorder != nil {
			s.recorder.ObserveInvocation(ctx, outcome, inv.Envelope.StatusCode, time.Since(start))
		}
	}()

	result, err := s.Process(ctx, ev)
	if err != nil {
		inv.Err = apperrors.Normalize(err)
		inv.Envelope = errorEnvelope(inv.Err)
		return inv
	}

	inv.Result = result
	inv.Envelope = successEnvelope(result)
	return inv
}

// Handle returns only the envelope.
func (s *Service) Handle(ctx context.Context, ev *Event) Envelope {
	return s.Invoke(ctx, ev).Envelope
}

// HandleRaw parses a raw invocation payload and handles it.
func (s *Service) HandleRaw(ctx context.Context, raw []byte) Envelope {
	ev, err := ParseEvent(raw)
	if err != nil {
		stdErr := apperrors.Normalize(err)
		s.logger.Warn("Rejected invocation payload", map[string]interface{}{
			"message": stdErr.Message,
			"details": stdErr.Details,
		})
		if s.recorder != nil {
			s.recorder.ObserveInvocation(ctx, strings.ToLower(string(stdErr.Code)), apperrors.HTTPStatus(stdErr.Code), 0)
		}
		return errorEnvelope(stdErr)
	}
	return s.Handle(ctx, ev)
}

func (s *Service) track() func() {
	if t, ok := s.recorder.(Tracker); ok {
		return t.Track()
	}
	return func() {}
}

func (s *Service) notify(ctx context.Context, result *Result) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, result); err != nil {
		s.logger.Warn("Failed to publish blog notification", map[string]interface{}{
			"s3Key": result.Key,
			"error": err.Error(),
		})
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
	}
	span.End()
}

func successEnvelope(result *Result) Envelope {
	return Envelope{
		StatusCode: 200,
		Body: mustJSON(map[string]string{
			"message": MsgGenerated,
			"s3_key":  result.Key,
		}),
	}
}

func errorEnvelope(err *apperrors.StandardError) Envelope {
	return Envelope{
		StatusCode: apperrors.HTTPStatus(err.Code),
		Body:       mustJSON(map[string]string{"error": err.Message}),
	}
}

// mustJSON encodes string maps, which cannot fail.
func mustJSON(v map[string]string) string {
	b, _ := json.Marshal(v)
	return string(b)
}
