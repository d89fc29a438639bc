// Copyright 2025 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tc_test

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/gopacket/gopacket/layers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scionproto/diffserv/pkg/log"
	"github.com/scionproto/diffserv/pkg/log/testlog"
	"github.com/scionproto/diffserv/pkg/metrics"
	"github.com/scionproto/diffserv/pkg/pktcls"
	"github.com/scionproto/diffserv/pkg/pktcls/mock_pktcls"
	"github.com/scionproto/diffserv/pkg/tc"
)

func newQueueDisc(t *testing.T, sched tc.Scheduler, cfgs []tc.ClassConfig,
	opts ...tc.Option) *tc.QueueDisc {

	t.Helper()
	classes := make([]*tc.Class, 0, len(cfgs))
	for _, cfg := range cfgs {
		classes = append(classes, tc.NewClass(cfg))
	}
	opts = append([]tc.Option{tc.WithLogger(testlog.NewLogger(t))}, opts...)
	qd, err := tc.New(classes, sched, opts...)
	require.NoError(t, err)
	return qd
}

func TestNewValidation(t *testing.T) {
	testCases := map[string]struct {
		Classes   []*tc.Class
		Sched     tc.Scheduler
		AssertErr assert.ErrorAssertionFunc
	}{
		"no classes": {
			Sched: tc.NewDRR(),
			AssertErr: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, tc.ErrNoClasses)
			},
		},
		"nil scheduler": {
			Classes:   []*tc.Class{tc.NewClass(tc.ClassConfig{MaxPackets: 1})},
			AssertErr: assert.Error,
		},
		"zero DRR weight": {
			Classes: []*tc.Class{
				tc.NewClass(tc.ClassConfig{Weight: 100, MaxPackets: 1}),
				tc.NewClass(tc.ClassConfig{MaxPackets: 1}),
			},
			Sched: tc.NewDRR(),
			AssertErr: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, tc.ErrZeroWeight)
			},
		},
		"negative SPQ priority": {
			Classes: []*tc.Class{
				tc.NewClass(tc.ClassConfig{Priority: 1, MaxPackets: 1}),
				tc.NewClass(tc.ClassConfig{Priority: -1, MaxPackets: 1}),
			},
			Sched: &tc.StrictPriority{},
			AssertErr: func(t assert.TestingT, err error, _ ...interface{}) bool {
				return assert.ErrorIs(t, err, tc.ErrNegativePriority)
			},
		},
		"zero weight is fine for SPQ": {
			Classes:   []*tc.Class{tc.NewClass(tc.ClassConfig{MaxPackets: 1})},
			Sched:     &tc.StrictPriority{},
			AssertErr: assert.NoError,
		},
	}
	for name, test := range testCases {
		t.Run(name, func(t *testing.T) {
			qd, err := tc.New(test.Classes, test.Sched)
			test.AssertErr(t, err)
			if err == nil {
				assert.NotNil(t, qd)
			}
		})
	}
}

func TestQueueDiscCapacity(t *testing.T) {
	qd := newQueueDisc(t, tc.NewDRR(), []tc.ClassConfig{
		{Weight: 1500, MaxPackets: 3},
	})
	var admitted int
	for i := 0; i < 5; i++ {
		if qd.Enqueue(pkt(100, 80)) {
			admitted++
		}
	}
	assert.Equal(t, 3, admitted)
	assert.Equal(t, 3, qd.Len())
	assert.Equal(t, 3, qd.Classes()[0].Len)
}

func TestQueueDiscUnclassified(t *testing.T) {
	qd := newQueueDisc(t, &tc.StrictPriority{}, []tc.ClassConfig{
		{MaxPackets: 10, Filters: []pktcls.Filter{portFilter(1)}},
		{MaxPackets: 10, Filters: []pktcls.Filter{portFilter(2)}},
	})
	assert.False(t, qd.Enqueue(pkt(100, 80)))
	assert.Zero(t, qd.Len())
	for _, ci := range qd.Classes() {
		assert.Zero(t, ci.Len)
	}
	_, ok := qd.Dequeue()
	assert.False(t, ok)
	_, ok = qd.Peek()
	assert.False(t, ok)
	_, ok = qd.Remove()
	assert.False(t, ok)
}

func TestQueueDiscPeekDequeueCoherence(t *testing.T) {
	for _, discipline := range []string{tc.DisciplineDRR, tc.DisciplineSPQ} {
		t.Run(discipline, func(t *testing.T) {
			sched, err := tc.NewScheduler(discipline)
			require.NoError(t, err)
			qd := newQueueDisc(t, sched, []tc.ClassConfig{
				{Weight: 1500, Priority: 1, MaxPackets: 10,
					Filters: []pktcls.Filter{portFilter(1)}},
				{Weight: 700, Priority: 2, MaxPackets: 10,
					Filters: []pktcls.Filter{portFilter(2)}},
			})
			for i := 0; i < 10; i++ {
				require.True(t, qd.Enqueue(pkt(300+i*50, 1)))
				require.True(t, qd.Enqueue(pkt(200+i*70, 2)))
			}
			for qd.Len() > 0 {
				peeked, ok := qd.Peek()
				require.True(t, ok)
				again, ok := qd.Peek()
				require.True(t, ok)
				assert.Same(t, peeked, again)
				got, ok := qd.Dequeue()
				require.True(t, ok)
				assert.Same(t, peeked, got)
			}
			_, ok := qd.Peek()
			assert.False(t, ok)
		})
	}
}

func TestQueueDiscPeekKeepsDRRState(t *testing.T) {
	qd := newQueueDisc(t, tc.NewDRR(), []tc.ClassConfig{
		{Weight: 3000, MaxPackets: 10},
		{Weight: 1000, MaxPackets: 10, Default: true},
	})
	for i := 0; i < 4; i++ {
		require.True(t, qd.Enqueue(pkt(1000, 1)))
	}
	drr := qd.Scheduler().(*tc.DRR)
	_, ok := qd.Dequeue()
	require.True(t, ok)
	deficits, cursor := drr.Deficits(), drr.Cursor()
	for i := 0; i < 10; i++ {
		_, ok := qd.Peek()
		require.True(t, ok)
	}
	assert.Equal(t, deficits, drr.Deficits())
	assert.Equal(t, cursor, drr.Cursor())
}

func TestQueueDiscWeightedScenario(t *testing.T) {
	qd := newQueueDisc(t, tc.NewDRR(), []tc.ClassConfig{
		{Weight: 3000, MaxPackets: 100, Filters: []pktcls.Filter{portFilter(1)}},
		{Weight: 1000, MaxPackets: 100, Filters: []pktcls.Filter{portFilter(2)}},
	})
	for i := 0; i < 10; i++ {
		require.True(t, qd.Enqueue(pkt(1000, 1)))
		require.True(t, qd.Enqueue(pkt(1000, 2)))
	}
	var served [2]int
	for i := 0; i < 12; i++ {
		p, ok := qd.Dequeue()
		require.True(t, ok)
		served[p.DstPort()-1]++
	}
	assert.Equal(t, [2]int{9, 3}, served)
	assert.Equal(t, 8, qd.Len())
}

func TestQueueDiscStrictScenario(t *testing.T) {
	qd := newQueueDisc(t, &tc.StrictPriority{}, []tc.ClassConfig{
		{Priority: 0, MaxPackets: 10, Filters: []pktcls.Filter{portFilter(0)}},
		{Priority: 1, MaxPackets: 10, Filters: []pktcls.Filter{portFilter(1)}},
		{Priority: 2, MaxPackets: 10, Filters: []pktcls.Filter{portFilter(2)}},
	})
	for i := 0; i < 5; i++ {
		for port := uint16(0); port < 3; port++ {
			require.True(t, qd.Enqueue(pkt(500, port)))
		}
	}
	var order []uint16
	for {
		p, ok := qd.Dequeue()
		if !ok {
			break
		}
		order = append(order, p.DstPort())
	}
	assert.Equal(t, []uint16{2, 2, 2, 2, 2, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0}, order)
}

func TestQueueDiscRemoveDiscards(t *testing.T) {
	qd := newQueueDisc(t, tc.NewDRR(), []tc.ClassConfig{
		{Weight: 1500, MaxPackets: 4, Filters: []pktcls.Filter{portFilter(1)}},
		{Weight: 1500, MaxPackets: 4, Filters: []pktcls.Filter{portFilter(2)}},
	})
	first, second := pkt(100, 1), pkt(100, 1)
	require.True(t, qd.Enqueue(first))
	require.True(t, qd.Enqueue(second))

	got, ok := qd.Dequeue()
	require.True(t, ok)
	assert.Same(t, first, got)
	assert.Zero(t, qd.Classes()[0].Removed)

	got, ok = qd.Remove()
	require.True(t, ok)
	assert.Same(t, second, got)
	assert.Equal(t, 1, qd.Classes()[0].Removed)
	assert.Zero(t, qd.Classes()[1].Removed)
	assert.Zero(t, qd.Len())

	_, ok = qd.Remove()
	assert.False(t, ok)
	assert.Equal(t, 1, qd.Classes()[0].Removed)
}

func TestQueueDiscMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := tc.NewMetrics(metrics.NewFactory(metrics.WithRegistry(reg)))
	qd := newQueueDisc(t, tc.NewDRR(), []tc.ClassConfig{
		{Weight: 1500, MaxPackets: 2, Filters: []pktcls.Filter{portFilter(1)}},
		{Weight: 1500, MaxPackets: 2, Filters: []pktcls.Filter{portFilter(2)}},
	}, tc.WithMetrics(m))

	qd.Enqueue(pkt(100, 1))
	qd.Enqueue(pkt(200, 1))
	qd.Enqueue(pkt(300, 1))
	qd.Enqueue(pkt(100, 3))
	qd.Enqueue(pkt(400, 2))

	_, ok := qd.Dequeue()
	require.True(t, ok)
	_, ok = qd.Remove()
	require.True(t, ok)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EnqueuedPacketsTotal.WithLabelValues("0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EnqueuedPacketsTotal.WithLabelValues("1")))
	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.DroppedPacketsTotal.WithLabelValues("0", tc.DropReasonFull)))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.DroppedPacketsTotal.WithLabelValues("none", tc.DropReasonUnclassified)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DequeuedPacketsTotal.WithLabelValues("0")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.DequeuedBytesTotal.WithLabelValues("0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RemovedPacketsTotal.WithLabelValues("0")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.QueueLength.WithLabelValues("0")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueueLength.WithLabelValues("1")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range mfs {
		if mf.GetName() != "diffserv_tc_enqueued_packet_size_bytes" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if metric.GetLabel()[0].GetValue() != "0" {
				continue
			}
			found = true
			assert.Equal(t, uint64(2), metric.GetHistogram().GetSampleCount())
			assert.Equal(t, 300.0, metric.GetHistogram().GetSampleSum())
		}
	}
	assert.True(t, found)
}

func TestQueueDiscStarvationWarning(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := tc.NewMetrics(metrics.NewFactory(metrics.WithRegistry(reg)))
	logger, logs := testlog.NewObserved(log.InfoLevel)
	qd := newQueueDisc(t, tc.NewDRR(), []tc.ClassConfig{
		{Weight: 500, MaxPackets: 10},
	}, tc.WithMetrics(m), tc.WithLogger(logger))

	require.True(t, qd.Enqueue(pkt(400, 1)))
	assert.Zero(t, logs.Len())
	require.True(t, qd.Enqueue(pkt(1200, 1)))
	require.True(t, qd.Enqueue(pkt(1300, 1)))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(0), entries[0].ContextMap()["class"])
	assert.Equal(t, int64(1200), entries[0].ContextMap()["size"])
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StarvationRiskTotal.WithLabelValues("0")))
	assert.Equal(t, 1300, qd.Classes()[0].MaxAdmitted)

	// The class is still served, just slower.
	for i := 0; i < 3; i++ {
		_, ok := qd.Dequeue()
		assert.True(t, ok)
	}
}

func TestQueueDiscWithMockPackets(t *testing.T) {
	ctrl := gomock.NewController(t)
	p := mock_pktcls.NewMockPacket(ctrl)
	p.EXPECT().Protocol().Return(layers.IPProtocolTCP).AnyTimes()
	p.EXPECT().DstPort().Return(uint16(443)).AnyTimes()
	p.EXPECT().Len().Return(1500).AnyTimes()

	qd := newQueueDisc(t, tc.NewDRR(), []tc.ClassConfig{
		{Weight: 1500, MaxPackets: 1, Filters: []pktcls.Filter{portFilter(80)}},
		{Weight: 1500, MaxPackets: 1, Filters: []pktcls.Filter{portFilter(443)}},
	})
	require.True(t, qd.Enqueue(p))
	assert.Equal(t, 1, qd.Classes()[1].Len)
	got, ok := qd.Dequeue()
	require.True(t, ok)
	assert.Same(t, p, got)
}
