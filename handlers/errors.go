package handlers

import "errors"

// Sentinel errors used inside store mutations so handlers can map outcomes
// to status codes after the write lock is released.
var (
	errUserNotFound      = errors.New("user not found")
	errGroupNotFound     = errors.New("group not found")
	errApartmentNotFound = errors.New("apartment not found")
	errBookingNotFound   = errors.New("booking not found")
	errPhotoNotFound     = errors.New("photo not found")
	errEmailTaken        = errors.New("email already registered")
	errNameTaken         = errors.New("name already taken")
	errWrongPassword     = errors.New("wrong password")
	errInvalidTOTP       = errors.New("invalid 2fa code")
)
