package ingest

import (
	"time"

	"switchmap/internal/service/topology/reconcile"
)

// State 单个快照文件的处理状态
type State string

const (
	StateDiscovered        State = "discovered"
	StateZoneAssigned      State = "zone_assigned"
	StateZoneMacIpIngested State = "zone_macip_ingested"
	StateDeviceReconciled  State = "device_reconciled"
	StateDone              State = "done"
	StateSkipped           State = "skipped"
	StateFailed            State = "failed"
)

// FileResult 单个快照文件的处理结果
type FileResult struct {
	Path     string           `json:"path"`
	Hostname string           `json:"hostname"`
	Zone     string           `json:"zone"`
	State    State            `json:"state"`
	Error    string           `json:"error,omitempty"`
	Stages   reconcile.Status `json:"stages"`
}

func (f *FileResult) fail(err error) {
	f.State = StateFailed
	f.Error = err.Error()
}

func (f *FileResult) skip(err error) {
	f.State = StateSkipped
	if err != nil {
		f.Error = err.Error()
	}
}

// Report 一次入库运行的汇总
type Report struct {
	EventID    uint64        `json:"event_id"`
	EventName  string        `json:"event_name"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Files      []*FileResult `json:"files"`
	Done       int           `json:"done"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	RootEvent  uint64        `json:"root_event"`
	Purged     int64         `json:"purged"`
}

// tally 统计各终态文件数
func (r *Report) tally() {
	r.Done, r.Skipped, r.Failed = 0, 0, 0
	for _, f := range r.Files {
		switch f.State {
		case StateDone:
			r.Done++
		case StateSkipped:
			r.Skipped++
		case StateFailed:
			r.Failed++
		}
	}
}

// Duration 运行耗时
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
