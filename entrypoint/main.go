package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/openai/openai-go"

	"github.com/burnout909/ai-cpx-app-sub001/api"
	"github.com/burnout909/ai-cpx-app-sub001/artifacts"
	"github.com/burnout909/ai-cpx-app-sub001/checklist"
	"github.com/burnout909/ai-cpx-app-sub001/extraction"
	"github.com/burnout909/ai-cpx-app-sub001/logger"
	"github.com/burnout909/ai-cpx-app-sub001/pipeline"
	"github.com/burnout909/ai-cpx-app-sub001/s3client"
	"github.com/burnout909/ai-cpx-app-sub001/stt"
	"github.com/burnout909/ai-cpx-app-sub001/tasks"
	"github.com/burnout909/ai-cpx-app-sub001/timing"
	"github.com/burnout909/ai-cpx-app-sub001/transcript"
	"github.com/burnout909/ai-cpx-app-sub001/worker"
)

type Config struct {
	BundlePath     string `envconfig:"CPX_CHECKLIST_BUNDLE_PATH" required:"true"`
	ChecklistDBDSN string `envconfig:"CPX_CHECKLIST_DB_DSN" default:""`
	RestAPIActive  bool   `envconfig:"CPX_REST_API_ACTIVE" default:"false"`
	RestAPIPort    string `envconfig:"CPX_REST_API_PORT" default:"10000"`
}

const pipelineStartMaxRetries = 5

// blobUploader narrows the S3 client to the upload surface the artifact
// scheduler needs, dropping the upload metadata it has no use for.
type blobUploader struct {
	client *s3client.Client
}

func (u blobUploader) Upload(data string, key string) error {
	_, err := u.client.Upload(data, key)
	return err
}

func main() {
	logger.SetupLogging()
	cpxLogger := logger.NewLogger("Main")
	fatalErrLogger := cpxLogger.Fatal().Caller()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	// Load Pipeline
	pipelineChannel := make(chan *pipeline.Pipeline)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			ppln, err := buildPipeline(config)
			if err != nil {
				cpxLogger.Err(err).Msg("Failed to build scoring pipeline. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			cpxLogger.Info().Msg("Scoring pipeline ready")
			pipelineChannel <- ppln
			return
		}
		fatalErrLogger.Msg("Could not build scoring pipeline after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until pipeline loads
	ppln := <-pipelineChannel

	if config.RestAPIActive {
		go func() {
			cpxLogger.Info().Msg("Starting API service")
			handler := &api.Handler{
				Pipeline: ppln,
			}
			http.HandleFunc("/", handler.ProcessRequest)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			cpxLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	cpxLogger.Info().Msg("Start CPX Worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			cpxLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			cpxLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

func buildPipeline(config Config) (*pipeline.Pipeline, error) {
	registry, err := checklist.LoadRegistry(config.BundlePath)
	if err != nil {
		return nil, fmt.Errorf("load checklist bundles: %w", err)
	}

	var store checklist.VersionedStore
	if config.ChecklistDBDSN != "" {
		pgStore, err := checklist.OpenStore(context.Background(), config.ChecklistDBDSN)
		if err != nil {
			return nil, fmt.Errorf("open checklist store: %w", err)
		}
		store = pgStore
	}
	resolver := checklist.NewResolver(store, registry)

	s3Client, err := s3client.New()
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	openaiClient := openai.NewClient()
	transcriber, err := stt.NewOpenAITranscriber(openaiClient, s3Client)
	if err != nil {
		return nil, fmt.Errorf("create transcriber: %w", err)
	}
	acquirer := transcript.NewAcquirer(transcriber, s3Client)

	extractor, err := extraction.NewOpenAIExtractor(openaiClient)
	if err != nil {
		return nil, fmt.Errorf("create evidence extractor: %w", err)
	}
	classifier, err := timing.NewOpenAIClassifier(openaiClient)
	if err != nil {
		return nil, fmt.Errorf("create temporal classifier: %w", err)
	}

	tasksClient, err := tasks.NewClient()
	if err != nil {
		return nil, fmt.Errorf("create tasks client: %w", err)
	}
	scheduler := artifacts.NewScheduler(blobUploader{s3Client}, tasksClient.Sessions)

	return pipeline.New(resolver, acquirer, extractor, classifier, scheduler), nil
}
