package mcts

// Move is the collaborator interface the core consumes for a single game
// move (spec.md §6). The core never inspects move representation; it only
// mirrors, stringifies, and asks for an NN-plane index.
type Move interface {
	// Mirror returns this move reflected vertically, as used when a move
	// is reported from the opponent's perspective.
	Mirror() Move
	String() string
	// NNIndex returns the index of this move in the policy output plane,
	// after applying the given board transform.
	NNIndex(transform int) int
}

// Board is the collaborator the core consults for legal-move generation and
// move identity when re-rooting (NodeTree.MakeMove). Board/position history
// semantics (castling, en-passant, 50-move counter, FEN) live entirely
// outside this package.
type Board interface {
	GenerateLegalMoves() []Move
	IsSameMove(a, b Move) bool
	// GetModernMove canonicalizes a move into whatever representation the
	// tree should store (e.g. castling encoded as king-takes-rook).
	GetModernMove(m Move) Move
	IsBlackToMove() bool
}

// PositionHistory is the collaborator tracking the sequence of played moves
// and the position reached. NodeTree only appends to it and asks for the
// current position; move generation and FEN parsing are out of scope.
type PositionHistory interface {
	Append(m Move)
	Last() Board
	// Reset re-initializes the history to a starting position identified by
	// fen, discarding previously appended moves.
	Reset(fen string) error
}

// GameResult is a proved outcome of the game, from White's perspective.
// Negation mirrors the perspective switch between side-to-move and its
// opponent: -WhiteWon == BlackWon, -Draw == Draw.
type GameResult int8

const (
	BlackWon GameResult = -1
	Draw     GameResult = 0
	WhiteWon GameResult = 1
)

func (r GameResult) Negate() GameResult { return -r }

func (r GameResult) String() string {
	switch r {
	case BlackWon:
		return "BlackWon"
	case Draw:
		return "Draw"
	case WhiteWon:
		return "WhiteWon"
	default:
		return "Unknown"
	}
}

// Terminal classifies why a node's bounds are proved.
type Terminal uint8

const (
	NonTerminal Terminal = iota
	EndOfGame
	Tablebase
	TwoFold
)

func (t Terminal) String() string {
	switch t {
	case NonTerminal:
		return "NonTerminal"
	case EndOfGame:
		return "EndOfGame"
	case Tablebase:
		return "Tablebase"
	case TwoFold:
		return "TwoFold"
	default:
		return "Unknown"
	}
}
