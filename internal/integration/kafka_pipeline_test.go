//go:build integration

package integration_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/ev-scenario-etl/internal/adapter/kafka"
	"github.com/couchcryptid/ev-scenario-etl/internal/config"
	"github.com/couchcryptid/ev-scenario-etl/internal/domain"
	"github.com/couchcryptid/ev-scenario-etl/internal/mockdata"
	"github.com/couchcryptid/ev-scenario-etl/internal/observability"
	"github.com/couchcryptid/ev-scenario-etl/internal/pipeline"
	"github.com/couchcryptid/ev-scenario-etl/internal/source"
)

const testResultTopic = "test-scenario-results"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("ev-scenario-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestScenarioResultPublished runs a projection with the Kafka writer as the
// publisher and reads the result back from the topic.
func TestScenarioResultPublished(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testResultTopic)

	cfg := &config.Config{
		KafkaBrokers:        []string{broker},
		KafkaSinkTopic:      testResultTopic,
		KafkaPublishEnabled: true,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	path, err := mockdata.Generate(5, []int{2019, 2020}).WriteFiles(t.TempDir())
	require.NoError(t, err)
	catalog, err := source.LoadCatalog(path)
	require.NoError(t, err)

	metrics := observability.NewMetricsForTesting()
	svc := pipeline.New(catalog, writer, discardLogger(), metrics)

	in := domain.ScenarioInput{RegionKey: "Washington", EVPctDelta: 25, PHEVPctDelta: 10, Year: domain.YearPtr(2020)}
	want, err := svc.ProjectScenario(ctx, in)
	require.NoError(t, err)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testResultTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from result topic")

	assert.Equal(t, []byte("Washington"), msg.Key)
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Washington", headers["region"])
	assert.Equal(t, "2020", headers["year"])
	_, err = time.Parse(time.RFC3339, headers["generated_at"])
	assert.NoError(t, err, "generated_at should be valid RFC3339")

	got, err := kafka.DecodeMessage(msg)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("published result mismatch (-want +got):\n%s", diff)
	}
}

// TestRejectedScenarioNotPublished verifies only successful projections
// reach the topic.
func TestRejectedScenarioNotPublished(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testResultTopic)

	writer := kafka.NewWriter(&config.Config{KafkaBrokers: []string{broker}, KafkaSinkTopic: testResultTopic}, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	path, err := mockdata.Generate(5, []int{2020}).WriteFiles(t.TempDir())
	require.NoError(t, err)
	catalog, err := source.LoadCatalog(path)
	require.NoError(t, err)
	svc := pipeline.New(catalog, writer, discardLogger(), observability.NewMetricsForTesting())

	_, err = svc.ProjectScenario(ctx, domain.ScenarioInput{RegionKey: "Atlantis", EVPctDelta: 10})
	var unknown *domain.UnknownRegionError
	require.ErrorAs(t, err, &unknown)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testResultTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readCancel()
	_, err = consumer.ReadMessage(readCtx)
	assert.Error(t, err, "expected no message on the result topic")
}
