package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrar struct {
	input *usecase.RegisterInput
	err   error
}

func (r *fakeRegistrar) Register(_ context.Context, input *usecase.RegisterInput) (*entity.TokenPair, error) {
	r.input = input
	if r.err != nil {
		return nil, r.err
	}

	return &entity.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func fakeConnect(reg *fakeRegistrar, closed *bool) connectFunc {
	return func(context.Context) (registrar, func(context.Context) error, error) {
		return reg, func(context.Context) error {
			*closed = true

			return nil
		}, nil
	}
}

func TestRun_RegistersUser(t *testing.T) {
	reg := &fakeRegistrar{}
	var closed bool
	var out bytes.Buffer

	err := run(context.Background(),
		[]string{"-email", " ana@example.com ", "-first-name", "Ana", "-last-name", "Lima"},
		strings.NewReader("s3cret!\n"), &out, fakeConnect(reg, &closed))

	require.NoError(t, err)
	require.NotNil(t, reg.input)
	assert.Equal(t, "ana@example.com", reg.input.Email)
	assert.Equal(t, "s3cret!", reg.input.Password)
	assert.Equal(t, "Ana", reg.input.FirstName)
	assert.Equal(t, "Lima", reg.input.LastName)
	assert.Equal(t, "adduser", reg.input.Client.UserAgent)
	assert.Contains(t, out.String(), "User ana@example.com created")
	assert.True(t, closed)
}

func TestRun_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		wantErr string
	}{
		{name: "missing email", args: nil, stdin: "pw\n", wantErr: "--email flag is required"},
		{name: "empty password", args: []string{"-email", "a@example.com"}, stdin: "\n", wantErr: "password is empty"},
		{name: "unknown flag", args: []string{"-nope"}, stdin: "", wantErr: "failed to parse flags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &fakeRegistrar{}
			var closed bool

			err := run(context.Background(), tt.args, strings.NewReader(tt.stdin), &bytes.Buffer{}, fakeConnect(reg, &closed))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, reg.input)
			assert.False(t, closed)
		})
	}
}

func TestRun_PropagatesRegisterError(t *testing.T) {
	reg := &fakeRegistrar{err: domainerrors.ErrDuplicateEmail}
	var closed bool

	err := run(context.Background(), []string{"-email", "a@example.com"},
		strings.NewReader("pw-without-newline"), &bytes.Buffer{}, fakeConnect(reg, &closed))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrDuplicateEmail))
	assert.Equal(t, "pw-without-newline", reg.input.Password)
	assert.True(t, closed)
}

func TestRun_ConnectFailure(t *testing.T) {
	connectErr := errors.New("no database")

	err := run(context.Background(), []string{"-email", "a@example.com"}, strings.NewReader("pw\n"), &bytes.Buffer{},
		func(context.Context) (registrar, func(context.Context) error, error) {
			return nil, nil, connectErr
		})

	assert.ErrorIs(t, err, connectErr)
}
