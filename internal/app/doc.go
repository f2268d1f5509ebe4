// Package app provides the application service layer.
//
// Orchestrates the message pipeline: vouch counting in the designated
// channel, command dispatch, replies, leaderboard rendering. Depends on
// domain interfaces, not concrete implementations.
package app
