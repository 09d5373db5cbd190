// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the timed "data available" condition used by the
// in-process middleware: an eventfd watched by epoll on Linux, a channel
// elsewhere. A successful Wait consumes the condition.
package reactor
