package dto

// VoteResponse reflects the authoritative vote state after a transition, so
// the client can reconcile its optimistic counts.
type VoteResponse struct {
	PredictionID string `json:"predictionId"`
	Direction    string `json:"direction"`
	LikeCount    int    `json:"likeCount"`
	DislikeCount int    `json:"dislikeCount"`
}
