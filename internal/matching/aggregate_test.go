package matching

import (
	"testing"

	"github.com/stretchr/testify/require"

	"careermate/internal/domain"
)

func TestNormalizeBounds(t *testing.T) {
	require.Equal(t, 0.0, Normalize(1))
	require.Equal(t, 0.25, Normalize(2))
	require.Equal(t, 0.5, Normalize(3))
	require.Equal(t, 0.75, Normalize(4))
	require.Equal(t, 1.0, Normalize(5))
	for s := 1; s <= 5; s++ {
		v := Normalize(s)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestAggregateAveragesSharedLabels(t *testing.T) {
	e := NewEngine(nil)
	v, err := e.Aggregate([]domain.Answer{
		{QuestionID: "p1", Score: 5},
		{QuestionID: "p10", Score: 3},
		{QuestionID: "i1", Score: 4},
		{QuestionID: "s7", Score: 2},
		{QuestionID: "v8", Score: 1},
	})
	require.NoError(t, err)
	require.Equal(t, domain.LabelVector{"analytical": 0.75}, v.Traits)
	require.Equal(t, domain.LabelVector{"technology": 0.75}, v.Interests)
	require.Equal(t, domain.LabelVector{"creativity": 0.25}, v.Skills)
	require.Equal(t, domain.LabelVector{"creativity": 0.0}, v.Values)
}

func TestAggregateLeavesUnansweredLabelsAbsent(t *testing.T) {
	v, err := NewEngine(nil).Aggregate([]domain.Answer{{QuestionID: "s1", Score: 3}})
	require.NoError(t, err)
	require.Empty(t, v.Traits)
	require.Empty(t, v.Values)
	_, ok := v.Skills["technical"]
	require.False(t, ok)
}

func TestAggregateUsesFullBankRegardlessOfTier(t *testing.T) {
	v, err := NewEngine(nil).Aggregate([]domain.Answer{{QuestionID: "s10", Score: 5}})
	require.NoError(t, err)
	require.Equal(t, 1.0, v.Skills["adaptability"])
}

func TestAggregateLastAnswerWins(t *testing.T) {
	v, err := NewEngine(nil).Aggregate([]domain.Answer{
		{QuestionID: "p1", Score: 1},
		{QuestionID: "p1", Score: 5},
	})
	require.NoError(t, err)
	require.Equal(t, 1.0, v.Traits["analytical"])
}

func TestAggregateRejectsUnknownQuestion(t *testing.T) {
	_, err := NewEngine(nil).Aggregate([]domain.Answer{{QuestionID: "zzz", Score: 3}})
	require.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestAggregateRejectsOutOfRangeScore(t *testing.T) {
	for _, score := range []int{0, 6, -1} {
		_, err := NewEngine(nil).Aggregate([]domain.Answer{{QuestionID: "p1", Score: score}})
		require.ErrorIs(t, err, ErrInvalidScore)
	}
}
