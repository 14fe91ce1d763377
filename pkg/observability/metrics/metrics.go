package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	collectionRuns     atomic.Int64
	collectionPosts    atomic.Int64
	collectionAdded    atomic.Int64
	collectionUpdated  atomic.Int64
	collectionErrors   atomic.Int64
	votesAdded         atomic.Int64
	votesRemoved       atomic.Int64
	voteConflicts      atomic.Int64
	moderationUpdates  atomic.Int64
	contestsReconciled atomic.Int64
)

func ObserveCollectionRun(found, added, updated, errs int) {
	collectionRuns.Add(1)
	collectionPosts.Add(int64(found))
	collectionAdded.Add(int64(added))
	collectionUpdated.Add(int64(updated))
	collectionErrors.Add(int64(errs))
}

func ObserveVote(action string) {
	switch action {
	case "added":
		votesAdded.Add(1)
	case "removed":
		votesRemoved.Add(1)
	}
}

func ObserveVoteConflict() {
	voteConflicts.Add(1)
}

func ObserveModeration() {
	moderationUpdates.Add(1)
}

func ObserveReconciled() {
	contestsReconciled.Add(1)
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeCounter(w, "framefest_collection_runs_total", "Number of ingestion runs executed.", collectionRuns.Load())
	writeCounter(w, "framefest_collection_posts_found_total", "Number of external posts seen across ingestion runs.", collectionPosts.Load())
	writeCounter(w, "framefest_collection_posts_added_total", "Number of entries inserted by ingestion runs.", collectionAdded.Load())
	writeCounter(w, "framefest_collection_posts_updated_total", "Number of entries refreshed by ingestion runs.", collectionUpdated.Load())
	writeCounter(w, "framefest_collection_errors_total", "Number of soft errors accumulated by ingestion runs.", collectionErrors.Load())
	writeCounter(w, "framefest_votes_added_total", "Number of votes added.", votesAdded.Load())
	writeCounter(w, "framefest_votes_removed_total", "Number of votes removed.", votesRemoved.Load())
	writeCounter(w, "framefest_vote_conflicts_total", "Number of duplicate-vote conflicts resolved at the constraint.", voteConflicts.Load())
	writeCounter(w, "framefest_moderation_updates_total", "Number of moderation status or award writes.", moderationUpdates.Load())
	writeCounter(w, "framefest_contests_reconciled_total", "Number of stale contests corrected to ended.", contestsReconciled.Load())
}

func writeCounter(w http.ResponseWriter, name, help string, value int64) {
	fmt.Fprintf(w, "# HELP %s %s\n", name, help)
	fmt.Fprintf(w, "# TYPE %s counter\n", name)
	fmt.Fprintf(w, "%s %d\n", name, value)
}

func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WritePrometheus(w)
	})
}
