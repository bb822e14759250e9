package services

import "errors"

var (
	// ErrChainUnconfigured means an RPC URL, contract address or ABI is
	// missing, or the connection failed at startup.
	ErrChainUnconfigured = errors.New("chain reader not configured")
	// ErrChainRead is a failed call against a configured contract.
	ErrChainRead = errors.New("chain read failed")
	// ErrStateDecode means the contract answered with an unexpected tuple.
	ErrStateDecode = errors.New("unexpected game state tuple")
	ErrStore       = errors.New("history store failure")
	ErrUpstream    = errors.New("insight provider failure")
	// ErrInsightUnavailable means no LLM credentials were configured.
	ErrInsightUnavailable = errors.New("insights not configured")
)
