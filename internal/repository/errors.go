package repository

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrAlreadyExists  = errors.New("record already exists")
	ErrInvalidInput   = errors.New("invalid input parameters")
	ErrRecordNotFound = gorm.ErrRecordNotFound
)

// translateErr maps driver level unique violations to ErrAlreadyExists.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(ErrAlreadyExists, err.Error())
	}
	return err
}
