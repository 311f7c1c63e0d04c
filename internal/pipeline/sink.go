package pipeline

import "time"

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}

func emitQueued(sink ProgressSink, files []string) {
	for _, file := range files {
		emit(sink, Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

// emitStage reports stage for the run and then for every file.
func emitStage(sink ProgressSink, files []string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	for _, file := range files {
		sink.OnEvent(Event{File: file, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
	}
}
