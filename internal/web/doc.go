// Package web serves the polls pages and a small JSON API over HTTP.
//
// Routes:
//
//	GET  /polls/                 latest visible questions
//	GET  /polls/{id}/            question with a vote form
//	GET  /polls/{id}/results/    vote counts
//	POST /polls/{id}/vote/       record a vote, redirect to results
//	GET  /api/polls/             JSON form of the index
//	GET  /api/polls/{id}/        JSON form of the detail page
//	GET  /healthz                store liveness
//
// Every question lookup goes through poll.IsVisible with the server's clock.
// A question that exists but is not yet published is answered with 404,
// exactly like an unknown id.
package web
