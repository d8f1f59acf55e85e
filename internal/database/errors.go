package database

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/neckchi/tripsync/internal/exceptions"
	"github.com/sijms/go-ora/v2/network"
	log "github.com/sirupsen/logrus"
)

// Server and client error numbers with a friendly message.
const (
	ErUnknownDatabase   = 1049
	ErAccessDenied      = 1045
	ErAccessDeniedNoPwd = 1698
	CrConnectionError   = 2003

	OraInvalidLogin   = 1017
	OraUnknownService = 12514
	OraNoListener     = 12541
)

// ConnectError describes a failed connection attempt.
type ConnectError struct {
	Code          int
	SQLState      string
	ExpectedState string
	Message       string
	Known         bool
	Err           error
}

func (e *ConnectError) Error() string {
	return "Error: " + e.Message
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// UnexpectedState reports whether the server's SQLSTATE differs from the one
// normally paired with Code.
func (e *ConnectError) UnexpectedState() bool {
	return e.Known && e.SQLState != e.ExpectedState
}

// Report logs the error. Unknown errors are dumped in full.
func (e *ConnectError) Report() {
	if !e.Known {
		log.WithFields(log.Fields{"errno": e.Code, "sqlstate": e.SQLState}).Error("Unknown connection error!")
		exceptions.LogDump(e.Message, e.Err)
	}
	exceptions.Report(e, exceptions.SeverityError)
	if e.UnexpectedState() {
		log.Warnf("Unexpected SQL state: %s", e.SQLState)
	}
}

// Classify maps a driver error onto a ConnectError.
func Classify(err error) *ConnectError {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return classifyMySQL(myErr)
	}
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return classifyOracle(oraErr)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		addr := ""
		if opErr.Addr != nil {
			addr = opErr.Addr.String()
		}
		return &ConnectError{
			Code:          CrConnectionError,
			SQLState:      "HY000",
			ExpectedState: "HY000",
			Message:       fmt.Sprintf("Can't connect to server on '%s' (%v)", addr, opErr.Err),
			Known:         true,
			Err:           err,
		}
	}
	return &ConnectError{Message: err.Error(), Err: err}
}

func classifyMySQL(e *mysql.MySQLError) *ConnectError {
	ce := &ConnectError{
		Code:     int(e.Number),
		SQLState: strings.TrimRight(string(e.SQLState[:]), "\x00"),
		Message:  e.Message,
		Known:    true,
		Err:      e,
	}
	switch e.Number {
	case ErUnknownDatabase:
		ce.ExpectedState = "42000"
	case ErAccessDenied:
		ce.Message = "wrong password"
		ce.ExpectedState = "28000"
	case ErAccessDeniedNoPwd:
		ce.Message = "bad user name"
		ce.ExpectedState = "28000"
	default:
		ce.Known = false
	}
	return ce
}

func classifyOracle(e *network.OracleError) *ConnectError {
	ce := &ConnectError{Code: e.ErrCode, Message: e.ErrMsg, Known: true, Err: e}
	switch e.ErrCode {
	case OraInvalidLogin:
		ce.Message = "wrong password"
	case OraUnknownService, OraNoListener:
	default:
		ce.Known = false
	}
	return ce
}
