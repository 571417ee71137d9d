package statedb

import (
	"fmt"
	"io"
	"math/big"

	"github.com/0xhaz/Dynamic-Fee/amm"
	"github.com/0xhaz/Dynamic-Fee/event"
	"github.com/0xhaz/Dynamic-Fee/verifier"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// wordLen is the storage width of an unsigned 256 bit integer.
const wordLen = 32

// WriteElements writes each element in the elements slice to the passed
// io.Writer using WriteElement.
func WriteElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteElement is a one-stop shop to write the big endian representation of
// any element which is to be serialized.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case *big.Int:
		// Unsigned values are stored as full 256 bit big endian
		// words, mirroring the storage slot width of the original
		// state layout.
		word, overflow := uint256.FromBig(e)
		if overflow || e.Sign() < 0 {
			return fmt.Errorf("value %v out of range for 256 bit "+
				"storage", e)
		}
		b := word.Bytes32()
		_, err := w.Write(b[:])
		return err

	case common.Hash:
		_, err := w.Write(e[:])
		return err

	case common.Address:
		_, err := w.Write(e[:])
		return err

	case amm.PoolID:
		_, err := w.Write(e[:])
		return err

	case verifier.RequestID:
		_, err := w.Write(e[:])
		return err

	case amm.FeeMode:
		_, err := w.Write([]byte{byte(e)})
		return err

	case event.Type:
		_, err := w.Write([]byte{byte(e)})
		return err

	case uint8:
		_, err := w.Write([]byte{e})
		return err

	case uint32:
		var b [4]byte
		byteOrder.PutUint32(b[:], e)
		_, err := w.Write(b[:])
		return err

	case uint64:
		var b [8]byte
		byteOrder.PutUint64(b[:], e)
		_, err := w.Write(b[:])
		return err

	default:
		return fmt.Errorf("unhandled element type: %T", element)
	}
}

// ReadElements deserializes a variable number of elements from the passed
// io.Reader, with each element being deserialized according to the
// ReadElement function.
func ReadElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// ReadElement is a one-stop utility function to deserialize any datastructure
// encoded using the serialization format of the database.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case **big.Int:
		var b [wordLen]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = new(uint256.Int).SetBytes32(b[:]).ToBig()

	case *common.Hash:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}

	case *common.Address:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}

	case *amm.PoolID:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}

	case *verifier.RequestID:
		if _, err := io.ReadFull(r, e[:]); err != nil {
			return err
		}

	case *amm.FeeMode:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = amm.FeeMode(b[0])

	case *event.Type:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = event.Type(b[0])

	case *uint8:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = b[0]

	case *uint32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = byteOrder.Uint32(b[:])

	case *uint64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = byteOrder.Uint64(b[:])

	default:
		return fmt.Errorf("unhandled element type: %T", element)
	}

	return nil
}
