// Package redisserver serves the token codec over the Redis protocol.
//
// It speaks the RESP2 subset needed by redis-cli and common client
// libraries: array and inline commands in, simple strings, errors,
// integers, bulk strings and arrays out.
//
// Commands:
//
//	PING [message]
//	ECHO message
//	QUIT
//	COMMAND [...]
//	ENCODE text                    bulk: encoded token
//	DECODE token                   bulk: plain token
//	FIELDS token                   array: name, value, ...
//	NORMALIZE token                array: form, plain_token, encoded_token, segments, truncated
//	GENERATE login database org    array: plain, encoded, issued, expires
//	INSPECT token                  bulk: JSON inspection
//
// Domain errors are replied as "ERR <code> <message>".
package redisserver
