package savings

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geyser-scheduler/internal/model"
)

func TestProjectSavings(t *testing.T) {
	load := model.LoadSpec{Name: "geyser", PowerKW: 3, DurationH: 2}

	p, err := ProjectSavings(load, 2.85)
	require.NoError(t, err)
	assert.True(t, p.EnergyKWh.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, "17.1", p.Daily.String())
	assert.Equal(t, "119.7", p.Weekly.String())
	assert.Equal(t, "513", p.Monthly.String())
}

func TestProjectSavingsProportional(t *testing.T) {
	load := model.LoadSpec{PowerKW: 2.5, DurationH: 1.5}

	base, err := ProjectSavings(load, 1.75)
	require.NoError(t, err)

	doubleTariff, err := ProjectSavings(load, 3.5)
	require.NoError(t, err)
	two := decimal.NewFromInt(2)
	assert.True(t, doubleTariff.Daily.Equal(base.Daily.Mul(two)))
	assert.True(t, doubleTariff.Monthly.Equal(base.Monthly.Mul(two)))

	doubleEnergy, err := ProjectSavings(model.LoadSpec{PowerKW: 5, DurationH: 1.5}, 1.75)
	require.NoError(t, err)
	assert.True(t, doubleEnergy.Weekly.Equal(base.Weekly.Mul(two)))

	free, err := ProjectSavings(load, 0)
	require.NoError(t, err)
	assert.True(t, free.Monthly.IsZero())
}

func TestProjectSavingsInvalid(t *testing.T) {
	_, err := ProjectSavings(model.LoadSpec{PowerKW: 3, DurationH: 1}, -1)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
	_, err = ProjectSavings(model.LoadSpec{PowerKW: 0, DurationH: 1}, 1)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestRounded(t *testing.T) {
	p, err := ProjectSavings(model.LoadSpec{PowerKW: 3, DurationH: 1}, 2.3456)
	require.NoError(t, err)
	r := p.Rounded(2)
	assert.Equal(t, "7.04", r.Daily.String())
	assert.Equal(t, "49.26", r.Weekly.String())
	assert.Equal(t, "211.1", r.Monthly.String())
	// the original keeps full precision
	assert.Equal(t, "7.0368", p.Daily.String())
}

func TestAvoidedCost(t *testing.T) {
	c, err := AvoidedCost(3.2, 2.5)
	require.NoError(t, err)
	assert.Equal(t, "8", c.String())

	_, err = AvoidedCost(-1, 2.5)
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}
