package gast

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/gast/pkg/token"
)

// ErrFinished is returned by Finish when called twice.
var ErrFinished = errors.New("builder already finished")

// ContractViolation reports an adapter that drove the builder out of
// protocol: an exit with nothing open, an exit of the wrong family, or a
// file finished with frames still open. It signals a bug in the adapter, not
// malformed input.
type ContractViolation struct {
	File    string
	Op      string
	Want    string
	Got     string
	Pos     token.Position
	Message string
}

func (e *ContractViolation) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("expected %s, found %s", e.Want, e.Got)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: contract violation in %s at line %d, column %d: %s", e.File, e.Op, e.Pos.Line, e.Pos.Column, msg)
	}
	return fmt.Sprintf("%s: contract violation in %s: %s", e.File, e.Op, msg)
}

// IsContractViolation reports whether err wraps a ContractViolation.
func IsContractViolation(err error) bool {
	var cv *ContractViolation
	return errors.As(err, &cv)
}

// Common violation messages
const (
	errNoChainHead    = "no open if statement to chain onto"
	errUnbalancedFile = "%d node(s) left open at end of file, innermost %s"
	errPendingCalls   = "%d deferred call(s) never received a receiver, innermost %q"
	errOpenPrimaries  = "%d primary expression(s) left open"
	errNoPrimary      = "exit without a matching primary"
	errReceiverOpen   = "receiver of deferred call %q left %s open"
	errUnresolvedCall = "deferred call %q never received its receiver"
	errCalleeDetached = "callee %q is not owned by the method call below it"
	errRootClosed     = "operation after the root was closed"
)
