package services

import (
	"time"

	"github.com/eaas-dev/eaas-backend/internal/types"
)

// defaultExperiments is the fixture set a fresh experiment collection is
// seeded with.
func defaultExperiments() []types.Experiment {
	return []types.Experiment{
		{
			ID:                  "exp_1",
			Name:                "Q&A Model Evaluation",
			Description:         "Testing question-answering accuracy with comprehensive rubrics",
			Status:              types.ExperimentStatusActive,
			CreatedAt:           "2024-01-01T00:00:00Z",
			UpdatedAt:           "2024-01-01T00:00:00Z",
			EvaluationRunsCount: 3,
		},
		{
			ID:                  "exp_2",
			Name:                "Text Generation Quality",
			Description:         "Evaluating text generation coherence and creativity",
			Status:              types.ExperimentStatusActive,
			CreatedAt:           "2024-01-02T00:00:00Z",
			UpdatedAt:           "2024-01-02T00:00:00Z",
			EvaluationRunsCount: 1,
		},
	}
}

// defaultRubrics is the fixture set a fresh rubric collection is seeded with:
// three worked examples covering Q&A, text generation and code generation.
func defaultRubrics() []types.Rubric {
	now := types.Timestamp(time.Now())
	fiveScale := func(labels map[int]string) types.CriterionScale {
		return types.CriterionScale{Min: 1, Max: 5, Labels: labels}
	}
	return []types.Rubric{
		{
			ID:          "rubric_qa_accuracy",
			Name:        "Q&A Accuracy Rubric",
			Description: "Comprehensive evaluation rubric for question-answering accuracy and relevance",
			Category:    types.RubricCategoryQAAccuracy,
			IsActive:    true,
			IsTemplate:  true,
			CreatedAt:   now,
			UpdatedAt:   now,
			UsageCount:  15,
			Criteria: []types.Criterion{
				{
					ID:          "accuracy",
					Name:        "Factual Accuracy",
					Description: "How factually correct is the answer?",
					Weight:      40,
					Scale: fiveScale(map[int]string{
						1: "Completely incorrect",
						2: "Mostly incorrect",
						3: "Partially correct",
						4: "Mostly correct",
						5: "Completely correct",
					}),
				},
				{
					ID:          "relevance",
					Name:        "Relevance",
					Description: "How well does the answer address the question?",
					Weight:      30,
					Scale: fiveScale(map[int]string{
						1: "Not relevant",
						2: "Slightly relevant",
						3: "Moderately relevant",
						4: "Highly relevant",
						5: "Perfectly relevant",
					}),
				},
				{
					ID:          "completeness",
					Name:        "Completeness",
					Description: "Does the answer fully address all aspects of the question?",
					Weight:      20,
					Scale: fiveScale(map[int]string{
						1: "Incomplete",
						2: "Mostly incomplete",
						3: "Partially complete",
						4: "Mostly complete",
						5: "Fully complete",
					}),
				},
				{
					ID:          "clarity",
					Name:        "Clarity",
					Description: "How clear and understandable is the answer?",
					Weight:      10,
					Scale: fiveScale(map[int]string{
						1: "Very unclear",
						2: "Unclear",
						3: "Somewhat clear",
						4: "Clear",
						5: "Very clear",
					}),
				},
			},
		},
		{
			ID:          "rubric_text_generation",
			Name:        "Text Generation Quality",
			Description: "Evaluation rubric for text generation coherence, creativity, and quality",
			Category:    types.RubricCategoryTextGeneration,
			IsActive:    true,
			IsTemplate:  true,
			CreatedAt:   now,
			UpdatedAt:   now,
			UsageCount:  8,
			Criteria: []types.Criterion{
				{
					ID:          "coherence",
					Name:        "Coherence",
					Description: "How well does the text flow and make logical sense?",
					Weight:      35,
					Scale: fiveScale(map[int]string{
						1: "Incoherent",
						2: "Poor coherence",
						3: "Moderate coherence",
						4: "Good coherence",
						5: "Excellent coherence",
					}),
				},
				{
					ID:          "creativity",
					Name:        "Creativity",
					Description: "How original and creative is the generated text?",
					Weight:      25,
					Scale: fiveScale(map[int]string{
						1: "Not creative",
						2: "Slightly creative",
						3: "Moderately creative",
						4: "Very creative",
						5: "Highly creative",
					}),
				},
				{
					ID:          "grammar",
					Name:        "Grammar & Style",
					Description: "How correct is the grammar and writing style?",
					Weight:      25,
					Scale: fiveScale(map[int]string{
						1: "Poor grammar",
						2: "Below average",
						3: "Average",
						4: "Good grammar",
						5: "Excellent grammar",
					}),
				},
				{
					ID:          "engagement",
					Name:        "Engagement",
					Description: "How engaging and interesting is the text?",
					Weight:      15,
					Scale: fiveScale(map[int]string{
						1: "Not engaging",
						2: "Slightly engaging",
						3: "Moderately engaging",
						4: "Very engaging",
						5: "Highly engaging",
					}),
				},
			},
		},
		{
			ID:          "rubric_code_generation",
			Name:        "Code Generation Assessment",
			Description: "Evaluation rubric for code generation quality, functionality, and best practices",
			Category:    types.RubricCategoryCodeGeneration,
			IsActive:    true,
			IsTemplate:  false,
			CreatedAt:   now,
			UpdatedAt:   now,
			UsageCount:  12,
			Criteria: []types.Criterion{
				{
					ID:          "functionality",
					Name:        "Functionality",
					Description: "Does the code work as expected?",
					Weight:      40,
					Scale: fiveScale(map[int]string{
						1: "Does not work",
						2: "Partially works",
						3: "Works with issues",
						4: "Works well",
						5: "Works perfectly",
					}),
				},
				{
					ID:          "readability",
					Name:        "Code Readability",
					Description: "How readable and well-structured is the code?",
					Weight:      25,
					Scale: fiveScale(map[int]string{
						1: "Very hard to read",
						2: "Hard to read",
						3: "Moderately readable",
						4: "Easy to read",
						5: "Very easy to read",
					}),
				},
				{
					ID:          "efficiency",
					Name:        "Efficiency",
					Description: "How efficient is the code in terms of performance?",
					Weight:      20,
					Scale: fiveScale(map[int]string{
						1: "Very inefficient",
						2: "Inefficient",
						3: "Moderate efficiency",
						4: "Efficient",
						5: "Highly efficient",
					}),
				},
				{
					ID:          "best_practices",
					Name:        "Best Practices",
					Description: "Does the code follow coding best practices?",
					Weight:      15,
					Scale: fiveScale(map[int]string{
						1: "Poor practices",
						2: "Below average",
						3: "Average practices",
						4: "Good practices",
						5: "Excellent practices",
					}),
				},
			},
		},
	}
}
