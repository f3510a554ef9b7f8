package types

// Entry is one query/response pair of a transcript.
type Entry struct {
	// User is the query text.
	User string
	// Bot is the response text, or an error line when Err is set.
	Bot string
	// Err marks a bot-role error entry.
	Err bool
}

// Transcript is the ordered, append-only list of entries for the viewed session.
// Entries are never modified once appended; the whole list is swapped when the view changes.
type Transcript struct {
	entries []Entry
}

// NewTranscript returns a transcript holding a copy of entries.
func NewTranscript(entries ...Entry) *Transcript {
	t := &Transcript{}
	t.Replace(entries)
	return t
}

// Append adds an entry to the end of the transcript.
func (t *Transcript) Append(entry Entry) {
	t.entries = append(t.entries, entry)
}

// Replace swaps the whole transcript.
func (t *Transcript) Replace(entries []Entry) {
	t.entries = append([]Entry(nil), entries...)
}

// Clear empties the transcript.
func (t *Transcript) Clear() {
	t.entries = nil
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in order.
func (t *Transcript) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Last returns the newest entry.
func (t *Transcript) Last() (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	return t.entries[len(t.entries)-1], true
}
