package pipeline

import (
	"fmt"

	"github.com/Camelus33/tedin-sub000/helper"
	"github.com/knights-analytics/hugot"
)

// DefaultEmbedder creates the sentence embedder used by semantic memo
// retrieval: all-MiniLM-L6-v2 through a hugot feature-extraction pipeline,
// producing 384-dimensional embeddings. The model is downloaded on first
// use.
func DefaultEmbedder() (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel("sentence-transformers/all-MiniLM-L6-v2", "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return func(text string) ([]float32, error) {
		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return result.Embeddings[0], nil
	}, nil
}
