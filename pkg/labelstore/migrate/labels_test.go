package migrate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/label-store/pkg/labelstore/category"
	"github.com/tendant/label-store/pkg/labelstore/migrate"
)

func TestExtractLabelsDirect(t *testing.T) {
	data := []byte(`{"labels": ["021_gt_hd_xs", "030_bj_ds"]}`)

	labels, err := migrate.ExtractLabels(data, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"021_gt_hd_xs", "030_bj_ds"}, labels)
}

func TestExtractLabelsPrecedence(t *testing.T) {
	// all three sources present, only the direct array is consulted
	data := []byte(`{
		"labels": ["direct"],
		"annotations": [{"result": [{"value": {"rectanglelabels": ["from-annotation"]}}]}],
		"labelIds": [1]
	}`)

	labels, err := migrate.ExtractLabels(data, category.IDTable{1: "from-id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"direct"}, labels)
}

func TestExtractLabelsFromAnnotations(t *testing.T) {
	data := []byte(`{
		"annotations": [
			{"result": [
				{"value": {"rectanglelabels": ["021_gt_hd_xs", "030_bj_ds"]}},
				{"value": {"rectanglelabels": ["021_gt_hd_xs"]}}
			]},
			{"result": [{"value": {"rectanglelabels": ["050_env"]}}]}
		],
		"labelIds": [1]
	}`)

	labels, err := migrate.ExtractLabels(data, category.IDTable{1: "from-id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"021_gt_hd_xs", "030_bj_ds", "050_env"}, labels)
}

func TestExtractLabelsFromIDs(t *testing.T) {
	data := []byte(`{"labelIds": [2, 99, 1]}`)
	ids := category.IDTable{1: "021_gt_hd_xs", 2: "030_bj_ds"}

	labels, err := migrate.ExtractLabels(data, ids)
	require.NoError(t, err)
	assert.Equal(t, []string{"030_bj_ds", "021_gt_hd_xs"}, labels)
}

func TestExtractLabelsEmptyAnnotationsFallThrough(t *testing.T) {
	// an annotations array with no rectangle labels does not stop the
	// ID table from being consulted
	data := []byte(`{"annotations": [{"result": []}], "labelIds": [1]}`)

	labels, err := migrate.ExtractLabels(data, category.IDTable{1: "021_gt_hd_xs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"021_gt_hd_xs"}, labels)
}

func TestExtractLabelsNothingRecognized(t *testing.T) {
	labels, err := migrate.ExtractLabels([]byte(`{"task": 7}`), nil)
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestExtractLabelsInvalidJSON(t *testing.T) {
	_, err := migrate.ExtractLabels([]byte(`not json`), nil)
	assert.Error(t, err)
}
