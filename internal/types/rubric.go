package types

type RubricCategory string

const (
	RubricCategoryQAAccuracy     RubricCategory = "Q&A Accuracy"
	RubricCategoryTextGeneration RubricCategory = "Text Generation"
	RubricCategoryCodeGeneration RubricCategory = "Code Generation"
	RubricCategoryCreative       RubricCategory = "Creative Writing"
	RubricCategoryReasoning      RubricCategory = "Reasoning"
	RubricCategoryTranslation    RubricCategory = "Language Translation"
	RubricCategorySummarization  RubricCategory = "Summarization"
	RubricCategoryCustom         RubricCategory = "Custom"
)

func RubricCategories() []RubricCategory {
	return []RubricCategory{
		RubricCategoryQAAccuracy,
		RubricCategoryTextGeneration,
		RubricCategoryCodeGeneration,
		RubricCategoryCreative,
		RubricCategoryReasoning,
		RubricCategoryTranslation,
		RubricCategorySummarization,
		RubricCategoryCustom,
	}
}

// CriterionScale is an integer scoring scale with optional per-value labels.
type CriterionScale struct {
	Min    int            `json:"min"`
	Max    int            `json:"max"`
	Labels map[int]string `json:"labels,omitempty"`
}

// Criterion is a single weighted scoring dimension within a rubric.
// Weight is a 0-100 percentage; criterion weights across a rubric should sum
// to 100, which is checked at the request boundary only.
type Criterion struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Weight      float64        `json:"weight"`
	Scale       CriterionScale `json:"scale"`
}

type Rubric struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    RubricCategory `json:"category"`
	Criteria    []Criterion    `json:"criteria"`
	IsActive    bool           `json:"isActive"`
	IsTemplate  bool           `json:"isTemplate"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	UsageCount  int            `json:"usageCount"`
	CreatedBy   string         `json:"createdBy,omitempty"`
}

type CreateRubricInput struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    RubricCategory `json:"category"`
	Criteria    []Criterion    `json:"criteria"`
	IsActive    bool           `json:"isActive"`
	IsTemplate  bool           `json:"isTemplate"`
	CreatedBy   string         `json:"createdBy,omitempty"`
}

// RubricUpdate carries partial updates; nil fields are left untouched.
type RubricUpdate struct {
	Name        *string         `json:"name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Category    *RubricCategory `json:"category,omitempty"`
	Criteria    *[]Criterion    `json:"criteria,omitempty"`
	IsActive    *bool           `json:"isActive,omitempty"`
	IsTemplate  *bool           `json:"isTemplate,omitempty"`
	UsageCount  *int            `json:"usageCount,omitempty"`
}

// CloneCriteria deep-copies a criteria list, including scale label maps.
func CloneCriteria(in []Criterion) []Criterion {
	out := make([]Criterion, len(in))
	for i, c := range in {
		copied := c
		if c.Scale.Labels != nil {
			labels := make(map[int]string, len(c.Scale.Labels))
			for k, v := range c.Scale.Labels {
				labels[k] = v
			}
			copied.Scale.Labels = labels
		}
		out[i] = copied
	}
	return out
}
