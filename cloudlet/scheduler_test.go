package cloudlet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudsim-go/cloudsim/network"
)

func TestTimeSharedScheduler_Submit_AdmitsWhenPesFreeElseQueues(t *testing.T) {
	s := NewTimeSharedScheduler(2)

	c1 := NewCloudlet(1, 1000, 2)
	finish := s.Submit(c1, 0)
	assert.Equal(t, NoNextEvent, finish)
	require.Len(t, s.Exec(), 1)

	c2 := NewCloudlet(2, 500, 1)
	s.Submit(c2, 0)
	require.Len(t, s.Waiting(), 1)
	assert.Equal(t, Queued, s.Waiting()[0].Status)
}

func TestTimeSharedScheduler_CloudletAdmissionScenario(t *testing.T) {
	s := NewTimeSharedScheduler(2)

	c1 := NewCloudlet(1, 1000, 2)
	c2 := NewCloudlet(2, 500, 1)
	s.Submit(c1, 0)
	s.Submit(c2, 0)

	next := s.UpdateVmProcessing(1.0, []float64{1000, 1000})

	require.Len(t, s.Finished(), 1)
	assert.Equal(t, Success, s.Finished()[0].Status)
	assert.Equal(t, s.Finished()[0].LengthInstructions(), s.Finished()[0].InstructionsFinishedSoFar)

	require.Len(t, s.Exec(), 1)
	assert.Equal(t, c2.ID, s.Exec()[0].Cloudlet.ID)

	assert.InDelta(t, 1.5, next, 1e-9)
}

func TestSpaceSharedScheduler_AllocatesFixedShare(t *testing.T) {
	s := NewSpaceSharedScheduler(4)
	c := NewCloudlet(1, 4000, 2)
	s.Submit(c, 0)

	s.UpdateVmProcessing(1.0, []float64{500, 500, 500, 500})

	require.Len(t, s.Exec(), 1)
	assert.Equal(t, int64(1_000_000_000), s.Exec()[0].InstructionsFinishedSoFar)
}

func TestBase_CloudletCancel_RemovesFromWhicheverListAndReturnsCloudlet(t *testing.T) {
	s := NewTimeSharedScheduler(2)
	c := NewCloudlet(1, 1000, 1)
	s.Submit(c, 0)

	got := s.CloudletCancel(c.ID)
	require.NotNil(t, got)
	assert.Same(t, c, got)
	assert.Empty(t, s.Exec())

	assert.Nil(t, s.CloudletCancel(c.ID))
}

func TestBase_CloudletPauseThenResume_FreezesThenReadmits(t *testing.T) {
	s := NewTimeSharedScheduler(2)
	c := NewCloudlet(1, 5000, 2)
	s.Submit(c, 0)
	s.UpdateVmProcessing(0.5, []float64{1000, 1000})
	progress := s.Exec()[0].InstructionsFinishedSoFar
	require.Greater(t, progress, int64(0))

	ok := s.CloudletPause(c.ID)
	require.True(t, ok)
	require.Len(t, s.Paused(), 1)
	assert.Equal(t, progress, s.Paused()[0].InstructionsFinishedSoFar)

	ok = s.CloudletResume(c.ID)
	require.True(t, ok)
	require.Len(t, s.Exec(), 1)
	assert.Equal(t, progress, s.Exec()[0].InstructionsFinishedSoFar)
}

func TestBase_GetCloudletToMigrate_PopsFirstExecFIFO(t *testing.T) {
	s := NewTimeSharedScheduler(4)
	c1 := NewCloudlet(1, 1000, 1)
	c2 := NewCloudlet(2, 1000, 1)
	s.Submit(c1, 0)
	s.Submit(c2, 0)

	got := s.GetCloudletToMigrate()
	require.NotNil(t, got)
	assert.Equal(t, c1.ID, got.ID)
	require.Len(t, s.Exec(), 1)
	assert.Equal(t, c2.ID, s.Exec()[0].Cloudlet.ID)
}

func TestBase_UpdateVmProcessing_NoNextEventWhenExecEmpty(t *testing.T) {
	s := NewTimeSharedScheduler(2)
	next := s.UpdateVmProcessing(1.0, []float64{1000, 1000})
	assert.Equal(t, NoNextEvent, next)
}

func TestNetworkedTimeSharedScheduler_ChargesNetworkDelayBeforeInstructions(t *testing.T) {
	unthrottled := NewTimeSharedScheduler(1)
	cu := NewCloudlet(1, 1_000_000_000, 1)
	unthrottled.Submit(cu, 0)
	unthrottled.UpdateVmProcessing(1.0, []float64{1000})
	baseline := unthrottled.Exec()[0].InstructionsFinishedSoFar

	throttled := NewNetworkedTimeSharedScheduler(1, network.NewSimplePacketScheduler(0.4))
	ct := NewCloudlet(1, 1_000_000_000, 1)
	throttled.Submit(ct, 0)
	throttled.UpdateVmProcessing(1.0, []float64{1000})
	charged := throttled.Exec()[0].InstructionsFinishedSoFar

	assert.Less(t, charged, baseline)
}
