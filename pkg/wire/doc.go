// Package wire defines the datagram command vocabulary for breaktime.
//
// Commands travel as plain ASCII text, one command per datagram, with no
// framing beyond the datagram boundary. The first whitespace-delimited
// token selects the command:
//
//	break   end the current working phase immediately
//	set     change the working interval; the minute value arrives in a
//	        second, separate datagram containing only decimal digits
//	reset   restore the configured working interval and restart the phase
//	get     query the seconds remaining in the current phase
//	skip    end the current break phase immediately
//
// Replies are decimal ASCII seconds with no trailing terminator.
//
// The two-datagram encoding of "set" is fragile by construction: any
// unrelated datagram that arrives between the token and the value packet
// will be misinterpreted as the value. The format is kept because it is
// observed externally (shell scripts, status bars); see ParseMinutes.
package wire
