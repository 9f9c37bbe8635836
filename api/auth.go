package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"

	tbcommon "github.com/Samuel1505/TrustBridge-sub000/common"
)

const (
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"

	maxBodyBytes = 64 << 10
)

var (
	ErrMissingTimestamp = errors.New("missing or malformed timestamp")
	ErrStaleRequest     = errors.New("request timestamp outside signature window")
	ErrBadSignature     = errors.New("missing or malformed signature")
	ErrReplayedRequest  = errors.New("request already seen")
	ErrBodyTooLarge     = errors.New("request body too large")
)

type callerKey struct{}

// RequestDigest is the hash a caller signs with personal_sign:
// keccak256(method \n path \n timestamp \n body).
func RequestDigest(method string, path string, timestamp string, body []byte) common.Hash {
	return crypto.Keccak256Hash([]byte(method+"\n"+path+"\n"+timestamp+"\n"), body)
}

// SignRequest sets the auth headers for a request signed by signer.
func SignRequest(r *http.Request, body []byte, signer tbcommon.Signer, at time.Time) error {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	digest := RequestDigest(r.Method, r.URL.Path, timestamp, body)
	signature, err := tbcommon.SignPersonal(signer, digest[:])
	if err != nil {
		return err
	}
	r.Header.Set(HeaderTimestamp, timestamp)
	r.Header.Set(HeaderSignature, hexutil.Encode(signature))
	return nil
}

func Caller(ctx context.Context) common.Address {
	caller, _ := ctx.Value(callerKey{}).(common.Address)
	return caller
}

// authenticate recovers the caller from the request signature. Each digest
// is accepted once.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		if len(body) > maxBodyBytes {
			writeError(w, r, http.StatusRequestEntityTooLarge, ErrBodyTooLarge)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		timestamp := r.Header.Get(HeaderTimestamp)
		signedAt, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, ErrMissingTimestamp)
			return
		}
		drift := s.now().Sub(time.Unix(signedAt, 0))
		if drift > s.window || drift < -s.window {
			writeError(w, r, http.StatusUnauthorized, ErrStaleRequest)
			return
		}

		signature, err := hexutil.Decode(r.Header.Get(HeaderSignature))
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, ErrBadSignature)
			return
		}
		digest := RequestDigest(r.Method, r.URL.Path, timestamp, body)
		caller, err := tbcommon.RecoverPersonalSigner(digest[:], signature)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, ErrBadSignature)
			return
		}

		if err := s.seen.Add(digest.Hex()+caller.Hex(), caller, cache.DefaultExpiration); err != nil {
			log.Warn("[API] Replayed request from ", caller.Hex(), " on ", r.URL.Path)
			writeError(w, r, http.StatusUnauthorized, ErrReplayedRequest)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, caller)))
	})
}
