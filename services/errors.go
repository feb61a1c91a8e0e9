package services

import "errors"

var (
	ErrRoomExists            = errors.New("room already exists")
	ErrRoomNotFound          = errors.New("room not found")
	ErrRoomFull              = errors.New("room already has two players")
	ErrInvalidRoomCode       = errors.New("room code must be 4 printable characters")
	ErrInvalidPhase          = errors.New("action not allowed in current phase")
	ErrMoveAlreadySubmitted  = errors.New("move already submitted this round")
	ErrUnknownMove           = errors.New("move does not belong to the staked card")
	ErrCardNotOwned          = errors.New("card not owned by this wallet")
	ErrCardNotFound          = errors.New("card not found in catalog")
	ErrNotOwner              = errors.New("card not found or not owned by this address")
	ErrDailyClaimUnavailable = errors.New("daily claim not available yet")
	ErrAlreadyHasCards       = errors.New("wallet already has cards in its collection")
)
