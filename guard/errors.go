// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package guard

import "errors"

// Admission errors. Every rejection returned by InputGuard.Validate wraps
// exactly one of these inside a *RejectionError.
var (
	// ErrTooShort indicates the trimmed query is under the minimum length.
	ErrTooShort = errors.New("query too short")

	// ErrTooLong indicates the trimmed query is over the maximum length.
	ErrTooLong = errors.New("query too long")

	// ErrTooManyWords indicates the query has too many words.
	ErrTooManyWords = errors.New("too many words")

	// ErrRateLimited indicates the user exceeded an admission rate.
	ErrRateLimited = errors.New("rate limited")

	// ErrInjectionDetected indicates the risk score reached the malicious threshold.
	ErrInjectionDetected = errors.New("prompt injection detected")

	// ErrOutOfDomain indicates the relevance classifier rejected the query.
	ErrOutOfDomain = errors.New("query out of domain")
)

// Rate limiter denials. Wrapped together with ErrRateLimited.
var (
	// ErrPerMinuteExceeded indicates the per-minute quota is used up.
	ErrPerMinuteExceeded = errors.New("per-minute limit exceeded")

	// ErrPerHourExceeded indicates the per-hour quota is used up.
	ErrPerHourExceeded = errors.New("per-hour limit exceeded")
)

// ErrInvalidLimit indicates a non-positive rate limit.
var ErrInvalidLimit = errors.New("limits must be positive")

// RejectionError is returned when a query is refused admission.
// Message is the user-facing French explanation.
type RejectionError struct {
	Err     error
	Message string
}

func (e *RejectionError) Error() string {
	return e.Err.Error() + ": " + e.Message
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}
