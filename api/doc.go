// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Public contracts for the smallbox container library.
// Defines the allocator capability, the optional value destructor
// contract, allocation statistics, and the error taxonomy shared by
// the inline and adaptive box implementations.
//
// This package contains no implementation logic; concrete allocators
// live in package pool, box implementations in stackbox and the root
// smallbox package.
package api
