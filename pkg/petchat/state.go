package petchat

// Phase is the controller's send state. There is at most one in-flight send
// per conversation; submissions while Sending are rejected.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSending
)

// Entry is one visible message. Pending marks an optimistic local write not
// yet confirmed by the server; Failed marks one whose send was rejected.
// A failed entry stays visible so typed input is never silently lost.
type Entry struct {
	ChatMessage
	Pending bool
	Failed  bool
}

type sessionState struct {
	phase   Phase
	pet     Pet
	entries []Entry
}

// Events. Each one describes something that happened; apply folds it into
// the next state.

type event interface{ isEvent() }

type evInitialized struct {
	pet     Pet
	history []ChatMessage
}

type evSubmitted struct{ msg ChatMessage }

type evReplyReceived struct{ reply ChatMessage }

type evSendFailed struct{}

type evCleared struct{}

func (evInitialized) isEvent()   {}
func (evSubmitted) isEvent()     {}
func (evReplyReceived) isEvent() {}
func (evSendFailed) isEvent()    {}
func (evCleared) isEvent()       {}

// apply is the pure transition function. It never mutates its input: every
// branch returns a fresh state, which keeps the sequencing rules testable
// without a controller or any rendering layer.
func apply(st sessionState, ev event) sessionState {
	switch ev := ev.(type) {
	case evInitialized:
		entries := make([]Entry, 0, len(ev.history))
		for _, m := range ev.history {
			entries = append(entries, Entry{ChatMessage: m})
		}
		return sessionState{phase: PhaseIdle, pet: ev.pet, entries: entries}

	case evSubmitted:
		if st.phase != PhaseIdle {
			return st
		}
		next := cloneEntries(st.entries)
		next = append(next, Entry{ChatMessage: ev.msg, Pending: true})
		return sessionState{phase: PhaseSending, pet: st.pet, entries: next}

	case evReplyReceived:
		next := cloneEntries(st.entries)
		if i := lastPending(next); i >= 0 {
			next[i].Pending = false
		}
		next = append(next, Entry{ChatMessage: ev.reply})
		return sessionState{phase: PhaseIdle, pet: st.pet, entries: next}

	case evSendFailed:
		next := cloneEntries(st.entries)
		if i := lastPending(next); i >= 0 {
			next[i].Pending = false
			next[i].Failed = true
		}
		return sessionState{phase: PhaseIdle, pet: st.pet, entries: next}

	case evCleared:
		return sessionState{phase: PhaseIdle, pet: st.pet, entries: []Entry{}}
	}
	return st
}

func cloneEntries(in []Entry) []Entry {
	out := make([]Entry, len(in))
	copy(out, in)
	return out
}

func lastPending(entries []Entry) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Pending {
			return i
		}
	}
	return -1
}
