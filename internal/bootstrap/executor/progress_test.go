package executor

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cognite/powerops/internal/bootstrap/resources"
)

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)

	r.StartStep(resources.KindAsset, 2)
	r.CompleteStep(resources.KindAsset, nil)
	r.StartStep(resources.KindEvent, 1)
	r.CompleteStep(resources.KindEvent, errors.New("denied"))
	r.Warn(resources.KindSequenceContent, "seq", errors.New("bad row"))
	r.FinishExecution(&ExecutionResult{DataSetID: 1, Written: map[resources.Kind]int{resources.KindAsset: 2}})

	assert.Equal(t,
		"- writing 2 assets... ✓\n"+
			"- writing 1 events... ✗ Error: denied\n"+
			"\n  ! sequence_content seq: bad row\n"+
			"Wrote 2 resources to data set 1\n",
		buf.String())
}

func TestConsoleReporter_NilWriter(t *testing.T) {
	r := NewConsoleReporter(nil)
	assert.NotPanics(t, func() {
		r.StartStep(resources.KindAsset, 1)
		r.CompleteStep(resources.KindAsset, nil)
		r.Warn(resources.KindAsset, "a", errors.New("x"))
		r.FinishExecution(&ExecutionResult{})
	})
}
