package generateblog

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"blog-generator/internal/blog"
	"blog-generator/internal/common/config"
	"blog-generator/internal/common/errors"
	"blog-generator/internal/common/logger"
	"blog-generator/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = config.GenerateBlogTaskType

var errDuplicateJob = stderrors.New("job already claimed by another delivery")

type Handler struct {
	config       *Config
	logger       logger.Logger
	pipeline     Pipeline
	claimer      Claimer
	errorHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Pipeline     Pipeline
	Claimer      Claimer // optional
	Logger       logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Pipeline == nil {
		return nil, fmt.Errorf("%s requires a pipeline", TaskType)
	}

	loggerInstance := opts.Logger
	if loggerInstance == nil {
		loggerInstance = logger.NewStructured("info", "json")
	}
	loggerInstance = loggerInstance.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:       workerConfig,
		logger:       loggerInstance,
		pipeline:     opts.Pipeline,
		claimer:      opts.Claimer,
		errorHandler: errors.NewErrorHandler(loggerInstance),
	}, nil
}

func (h *Handler) Config() *Config {
	return h.config
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing generate blog job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	variables, err := job.GetVariablesAsMap()
	if err != nil {
		h.fail(ctx, client, job, errors.NewMalformedRequestError(blog.MsgInvalidJSON, err))
		return
	}

	output, err := h.execute(ctx, job.GetKey(), variables)
	if stderrors.Is(err, errDuplicateJob) {
		metrics.WorkerJobsDuplicate.WithLabelValues(TaskType).Inc()
		if prior, ok := h.priorOutput(ctx, job.GetKey()); ok {
			h.logger.Info("Completing redelivered job with recorded output", map[string]interface{}{"jobKey": job.GetKey()})
			h.completeJob(ctx, client, job, prior)
			return
		}
		h.logger.Warn("Skipping duplicate job delivery", map[string]interface{}{"jobKey": job.GetKey()})
		return
	}
	if err != nil {
		h.fail(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func claimKey(jobKey int64) string {
	return fmt.Sprintf("processing:%s:%d", TaskType, jobKey)
}

// execute runs the pipeline for one job. Job variables use the same shapes as
// any other invocation: a direct {"blog_topic": ...} or a body envelope.
func (h *Handler) execute(ctx context.Context, jobKey int64, variables map[string]interface{}) (*Output, error) {
	if h.claimer != nil {
		claimed, err := h.claimer.Claim(ctx, claimKey(jobKey), h.config.ClaimTTL)
		if err != nil {
			return nil, errors.NewInternalError(err)
		}
		if !claimed {
			return nil, errDuplicateJob
		}
	}

	ev, err := blog.EventFromMap(variables)
	if err != nil {
		h.release(ctx, jobKey)
		return nil, err
	}

	inv := h.pipeline.Invoke(ctx, ev)
	if inv.Err != nil {
		h.release(ctx, jobKey)
		return nil, inv.Err
	}

	output := &Output{
		StatusCode: inv.Envelope.StatusCode,
		Message:    blog.MsgGenerated,
		S3Key:      inv.Result.Key,
		Bucket:     inv.Result.Bucket,
		RequestID:  inv.RequestID,
	}
	h.remember(ctx, jobKey, output)
	return output, nil
}

// remember replaces the in-progress claim with the finished output.
func (h *Handler) remember(ctx context.Context, jobKey int64, output *Output) {
	if h.claimer == nil {
		return
	}
	data, err := json.Marshal(output)
	if err == nil {
		err = h.claimer.Record(ctx, claimKey(jobKey), string(data), h.config.ClaimTTL)
	}
	if err != nil {
		h.logger.Warn("Failed to record job output", map[string]interface{}{
			"jobKey": jobKey,
			"error":  err.Error(),
		})
	}
}

// priorOutput returns the output recorded by an earlier delivery of the job.
// A claim that is still in progress has no output yet.
func (h *Handler) priorOutput(ctx context.Context, jobKey int64) (*Output, bool) {
	if h.claimer == nil {
		return nil, false
	}
	value, ok, err := h.claimer.Lookup(ctx, claimKey(jobKey))
	if err != nil {
		h.logger.Warn("Failed to look up job output", map[string]interface{}{
			"jobKey": jobKey,
			"error":  err.Error(),
		})
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var output Output
	if err := json.Unmarshal([]byte(value), &output); err != nil || output.S3Key == "" {
		return nil, false
	}
	return &output, true
}

// release lets a retry of a failed job claim it again.
func (h *Handler) release(ctx context.Context, jobKey int64) {
	if h.claimer == nil {
		return
	}
	if err := h.claimer.Release(ctx, claimKey(jobKey)); err != nil {
		h.logger.Warn("Failed to release job claim", map[string]interface{}{
			"jobKey": jobKey,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.CodeOf(err))).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("Generate blog job completed", map[string]interface{}{
		"jobKey": job.GetKey(),
		"s3Key":  output.S3Key,
	})
}
