package storage

import (
	"regexp"
	"strings"
)

// plainImagePattern matches every <img> tag source in stored content; data
// URIs are filtered out when planning deletions since they reference no file.
var plainImagePattern = regexp.MustCompile(`<img src="([^"]+)"`)

// CleanupPlan accumulates image references that must be released by a record
// mutation. Planning is pure and happens against the old snapshot before the
// record write, because the previous content string is unrecoverable from the
// database afterwards; Run performs the deletions only once the write has
// committed.
type CleanupPlan struct {
	refs []string
}

// PlanHeaderChange schedules the old header file for deletion when the header
// reference is set and about to change (including being cleared).
func (p *CleanupPlan) PlanHeaderChange(oldRef, newRef string) {
	if oldRef != "" && oldRef != newRef {
		p.refs = append(p.refs, oldRef)
	}
}

// PlanContentChange schedules every image URL referenced by the old content
// for deletion whenever the content string changed at all. Note this includes
// URLs the new content still references verbatim, so an edit that keeps an
// image loses its file. The publisher has always behaved this way; it is
// deliberately preserved rather than silently fixed (see DESIGN.md).
func (p *CleanupPlan) PlanContentChange(oldContent, newContent string) {
	if oldContent == newContent {
		return
	}
	for _, m := range plainImagePattern.FindAllStringSubmatch(oldContent, -1) {
		src := m[1]
		if strings.HasPrefix(src, "data:") {
			continue
		}
		p.refs = append(p.refs, src)
	}
}

// Refs exposes the planned deletions, mostly for tests.
func (p *CleanupPlan) Refs() []string { return p.refs }

// Empty reports whether the plan has nothing to do.
func (p *CleanupPlan) Empty() bool { return len(p.refs) == 0 }

// Run deletes every planned reference through the store. Failures are logged
// by the store and never surface; a missing file counts as done.
func (p *CleanupPlan) Run(store *ImageStore) {
	for _, ref := range p.refs {
		store.Delete(ref)
	}
}
