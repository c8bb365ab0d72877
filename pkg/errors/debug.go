package errors

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	MongoCode    int32  `json:"mongo_code,omitempty"`
	MongoName    string `json:"mongo_name,omitempty"`
	MongoMessage string `json:"mongo_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		d.MongoCode = cmdErr.Code
		d.MongoName = cmdErr.Name
		d.MongoMessage = cmdErr.Message
		return d
	}

	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) && len(writeErr.WriteErrors) > 0 {
		first := writeErr.WriteErrors[0]
		d.MongoCode = int32(first.Code)
		d.MongoMessage = first.Message
		return d
	}

	return d
}
