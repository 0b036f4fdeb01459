package ml

import "sort"

// Metrics are the evaluation scores on the held-out split. ROCAUC is nil
// when the test split contains a single class, where the score is undefined.
type Metrics struct {
	Accuracy  float64  `json:"accuracy"`
	Precision float64  `json:"precision"`
	Recall    float64  `json:"recall"`
	F1        float64  `json:"f1"`
	ROCAUC    *float64 `json:"roc_auc"`
}

// ConfusionMatrix is a 2x2 matrix: rows are actual {0,1}, columns predicted
// {0,1}. Entries sum to the test-set size.
type ConfusionMatrix [2][2]int

// Total returns the number of scored rows.
func (cm ConfusionMatrix) Total() int {
	return cm[0][0] + cm[0][1] + cm[1][0] + cm[1][1]
}

// Evaluate scores predictions against true labels. Zero divisions resolve to
// 0 rather than an error, matching how a skewed or tiny test split should be
// reported, not rejected.
func Evaluate(yTrue, yPred []int, proba []float64) (Metrics, ConfusionMatrix) {
	var cm ConfusionMatrix
	for i := range yTrue {
		cm[bit(yTrue[i])][bit(yPred[i])]++
	}

	tp := float64(cm[1][1])
	fp := float64(cm[0][1])
	fn := float64(cm[1][0])
	tn := float64(cm[0][0])
	total := tp + fp + fn + tn

	var m Metrics
	if total > 0 {
		m.Accuracy = (tp + tn) / total
	}
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if auc, ok := rocAUC(yTrue, proba); ok {
		m.ROCAUC = &auc
	}
	return m, cm
}

// rocAUC computes the area under the ROC curve via the rank-sum identity,
// averaging ranks over tied scores. The second return is false when one of
// the classes is absent.
func rocAUC(yTrue []int, score []float64) (float64, bool) {
	if len(yTrue) == 0 || len(yTrue) != len(score) {
		return 0, false
	}
	var n0, n1 int
	for _, y := range yTrue {
		if y == 1 {
			n1++
		} else {
			n0++
		}
	}
	if n0 == 0 || n1 == 0 {
		return 0, false
	}

	order := make([]int, len(score))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return score[order[a]] < score[order[b]]
	})

	ranks := make([]float64, len(score))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && score[order[j]] == score[order[i]] {
			j++
		}
		// ranks are 1-based; tied scores share the average rank
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	rankSum := 0.0
	for i, y := range yTrue {
		if y == 1 {
			rankSum += ranks[i]
		}
	}
	auc := (rankSum - float64(n1)*float64(n1+1)/2) / (float64(n1) * float64(n0))
	return auc, true
}

func bit(y int) int {
	if y == 1 {
		return 1
	}
	return 0
}
