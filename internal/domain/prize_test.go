package domain_test

import (
	"testing"

	"millionaire-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestPrizesStrictlyIncrease(t *testing.T) {
	assert.Len(t, domain.Prizes, domain.LevelCount)
	for i := 1; i < len(domain.Prizes); i++ {
		assert.Greater(t, domain.Prizes[i], domain.Prizes[i-1])
	}
	assert.Equal(t, int64(1000000), domain.TopPrize())
}

func TestPrize(t *testing.T) {
	assert.Zero(t, domain.Prize(-1))
	assert.Equal(t, int64(100), domain.Prize(0))
	assert.Equal(t, int64(200), domain.Prize(1))
	assert.Equal(t, domain.TopPrize(), domain.Prize(domain.MaxLevel+1))
}

func TestFireproofPrize(t *testing.T) {
	assert.Zero(t, domain.FireproofPrize(-1))
	assert.Zero(t, domain.FireproofPrize(3))
	assert.Equal(t, int64(1000), domain.FireproofPrize(4))
	assert.Equal(t, int64(1000), domain.FireproofPrize(8))
	assert.Equal(t, int64(32000), domain.FireproofPrize(9))
	assert.Equal(t, int64(32000), domain.FireproofPrize(13))
	assert.Equal(t, int64(1000000), domain.FireproofPrize(14))
	assert.True(t, domain.IsFireproof(9))
	assert.False(t, domain.IsFireproof(10))
}

func TestQuestionValidate(t *testing.T) {
	valid := domain.Question{Level: 14, Text: "some", Answer1: "1", Answer2: "1", Answer3: "1", Answer4: "1"}
	assert.NoError(t, valid.Validate())

	zero := valid
	zero.Level = 0
	assert.NoError(t, zero.Validate())

	tooHigh := valid
	tooHigh.Level = 500
	assert.Error(t, tooHigh.Validate())

	noText := valid
	noText.Text = ""
	assert.Error(t, noText.Validate())

	noAnswer := valid
	noAnswer.Answer3 = ""
	assert.Error(t, noAnswer.Validate())
}
