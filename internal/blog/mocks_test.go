package blog

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/mock"
)

// ==========================
// Mock AWS clients
// ==========================

type MockBedrockClient struct {
	mock.Mock
}

func (m *MockBedrockClient) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bedrockruntime.InvokeModelOutput), args.Error(1)
}

func modelResponse(body string) *bedrockruntime.InvokeModelOutput {
	return &bedrockruntime.InvokeModelOutput{
		Body:        []byte(body),
		ContentType: stringPtr("application/json"),
	}
}

type MockS3Client struct {
	mock.Mock

	mu     sync.Mutex
	bodies []string
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.capture(params.Body)
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3Client) capture(body io.Reader) {
	data, _ := io.ReadAll(body)
	m.mu.Lock()
	m.bodies = append(m.bodies, string(data))
	m.mu.Unlock()
}

func (m *MockS3Client) Bodies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.bodies...)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*manager.UploadOutput), args.Error(1)
}

type MockSNSClient struct {
	mock.Mock
}

func (m *MockSNSClient) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

// ==========================
// Fakes for service tests
// ==========================

type fakeGenerator struct {
	text  string
	err   error
	panic interface{}
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, topic string) (string, error) {
	f.calls++
	if f.panic != nil {
		panic(f.panic)
	}
	return f.text, f.err
}

type fakeNotifier struct {
	results []*Result
	err     error
}

func (f *fakeNotifier) Notify(ctx context.Context, result *Result) error {
	f.results = append(f.results, result)
	return f.err
}

type observation struct {
	outcome    string
	statusCode int
}

type fakeRecorder struct {
	observations []observation
	tracked      int
	active       int
}

func (f *fakeRecorder) Track() func() {
	f.tracked++
	f.active++
	return func() { f.active-- }
}

func (f *fakeRecorder) ObserveInvocation(ctx context.Context, outcome string, statusCode int, duration time.Duration) {
	f.observations = append(f.observations, observation{outcome: outcome, statusCode: statusCode})
}

func stringPtr(s string) *string { return &s }
