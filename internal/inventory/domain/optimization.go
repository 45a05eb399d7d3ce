package domain

const maxSuggestions = 5

type Action string

const (
	ActionReduce   Action = "reduce"
	ActionIncrease Action = "increase"
)

type Suggestion struct {
	ProductID string `json:"product_id"`
	Product   string `json:"product"`
	Action    Action `json:"action"`
	Quantity  int64  `json:"quantity"`
	Reason    string `json:"reason"`
}

type Optimization struct {
	Overstocked  int          `json:"overstocked"`
	Understocked int          `json:"understocked"`
	Optimal      int          `json:"optimal"`
	Suggestions  []Suggestion `json:"suggestions"`
}

// Optimize classifies every level against twice its minimum. Levels above
// 2x min are overstocked, levels at or below min are understocked. Only
// the first few suggestions are kept.
func Optimize(levels []ProductStock) Optimization {
	out := Optimization{Suggestions: []Suggestion{}}
	for _, level := range levels {
		target := level.MinQty * 2
		switch {
		case level.AvailableQty > target:
			out.Overstocked++
			out.Suggestions = appendSuggestion(out.Suggestions, Suggestion{
				ProductID: level.ProductID.String(),
				Product:   level.Name,
				Action:    ActionReduce,
				Quantity:  level.AvailableQty - target,
				Reason:    "Overstocked - consider promotion",
			})
		case level.AvailableQty <= level.MinQty:
			out.Understocked++
			out.Suggestions = appendSuggestion(out.Suggestions, Suggestion{
				ProductID: level.ProductID.String(),
				Product:   level.Name,
				Action:    ActionIncrease,
				Quantity:  target - level.AvailableQty,
				Reason:    "Below minimum stock level",
			})
		default:
			out.Optimal++
		}
	}
	return out
}

func appendSuggestion(list []Suggestion, s Suggestion) []Suggestion {
	if len(list) >= maxSuggestions {
		return list
	}
	return append(list, s)
}
