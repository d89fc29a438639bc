// Copyright 2025 ETH Zurich
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tcconf builds queue disciplines from configuration records.
//
// A configuration is an ordered list of records. A class record defines the
// next traffic class; classes are numbered from 0 in definition order. A filter
// record attaches a filter to an already defined class. Records are applied in
// order. A record that cannot be applied is rejected on its own and the
// remaining records are still applied. A rejected class keeps its number, so
// later classes and the filters referring to them are not shifted; filters of
// a rejected class are rejected as well.
//
// Records are produced by the loaders for the line based text format, TOML and
// YAML. The text format looks as follows:
//
//	# queue <id> <weight|priority> <max_packets> [default]
//	queue 0 3000 100
//	queue 1 1000 100 default
//	# filter <class> <kind> <value> [<kind> <value>...]
//	filter 0 protocol udp dst_port 5000
//	filter 1 src_addr_mask 10.1.0.0/16
package tcconf

import (
	"errors"
	"fmt"

	"go.uber.org/zap/zapcore"

	"github.com/scionproto/diffserv/pkg/pktcls"
	"github.com/scionproto/diffserv/pkg/private/serrors"
)

var (
	// ErrUnknownKind indicates a filter predicate of unknown kind.
	ErrUnknownKind = pktcls.ErrUnknownKind
	// ErrInvalidValue indicates a filter predicate with an unparsable operand.
	ErrInvalidValue = pktcls.ErrInvalidValue
	// ErrClassIndex indicates a reference to a class that is not defined.
	ErrClassIndex = errors.New("class index not defined")
	// ErrCapacity indicates a class without queue capacity.
	ErrCapacity = errors.New("class capacity must be positive")
	// ErrWeight indicates a DRR class without positive weight.
	ErrWeight = errors.New("class weight must be positive")
	// ErrPriority indicates an SPQ class with a negative priority.
	ErrPriority = errors.New("class priority must not be negative")
	// ErrClassRejected indicates a filter of a class that was rejected.
	ErrClassRejected = errors.New("class was rejected")
	// ErrDuplicateDefault indicates a second default class.
	ErrDuplicateDefault = errors.New("default class already defined")
	// ErrSyntax indicates a record that could not be parsed.
	ErrSyntax = errors.New("syntax error")
	// ErrNoClasses indicates a configuration without any valid class.
	ErrNoClasses = errors.New("no class defined")
)

// PredicateRecord is one predicate of a filter in textual form.
type PredicateRecord struct {
	Kind  string
	Value string
}

// ClassRecord defines a class.
type ClassRecord struct {
	// ID is the declared index of the class. If set, it must be equal to the
	// index the class gets assigned.
	ID *int
	// Value is the weight in bytes for DRR, or the priority for SPQ.
	Value int
	// Capacity is the maximum number of queued packets.
	Capacity int
	Default  bool
}

// FilterRecord attaches a filter to a class.
type FilterRecord struct {
	Class int
	// Match is the conjunction of predicates. An empty list matches all
	// packets.
	Match []PredicateRecord
}

// Record is a single configuration record. Exactly one of Class and Filter is
// set. Records that could not be parsed have Err set; Class is still set if
// the record was meant to define a class, so that it takes up its number.
type Record struct {
	// Pos locates the record in its source, e.g., "queues.conf:3".
	Pos    string
	Class  *ClassRecord
	Filter *FilterRecord
	// Err is set by loaders for records that could not be parsed.
	Err error
}

// Rejection is a record that was not applied.
type Rejection struct {
	Pos string
	Err error
}

func (r Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Pos, r.Err)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (r Rejection) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("pos", r.Pos)
	enc.AddString("err", r.Err.Error())
	return nil
}

// Rejections are the records rejected while building a queue discipline.
type Rejections []Rejection

// Len returns the number of rejections.
func (r Rejections) Len() int { return len(r) }

// ToError returns all rejections as a single error, or nil if there are none.
func (r Rejections) ToError() error {
	if len(r) == 0 {
		return nil
	}
	errs := make(serrors.List, 0, len(r))
	for _, rej := range r {
		errs = append(errs, serrors.Wrap("rejected record", rej.Err, "pos", rej.Pos))
	}
	return errs
}

// MarshalLogArray implements zapcore.ArrayMarshaler.
func (r Rejections) MarshalLogArray(enc zapcore.ArrayEncoder) error {
	for _, rej := range r {
		if err := enc.AppendObject(rej); err != nil {
			return err
		}
	}
	return nil
}
