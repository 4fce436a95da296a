// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

//go:build integration

package auth_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/quorumqa/quorum/internal/auth"
	authpg "github.com/quorumqa/quorum/internal/auth/postgres"
	"github.com/quorumqa/quorum/internal/question"
	questionpg "github.com/quorumqa/quorum/internal/question/postgres"
	"github.com/quorumqa/quorum/internal/store"
)

type services struct {
	users     *authpg.UserRepository
	sessions  *authpg.SessionRepository
	manager   *auth.SessionManager
	guard     *auth.AuthorizationGuard
	questions *question.Service
	now       time.Time
}

func newServices(policy auth.Policy) *services {
	s := &services{
		users:    authpg.NewUserRepository(pool),
		sessions: authpg.NewSessionRepository(pool),
		now:      time.Now().UTC().Truncate(time.Microsecond),
	}
	clock := func() time.Time { return s.now }
	tx := store.NewTransactor(pool)

	var err error
	s.manager, err = auth.NewSessionManager(s.users, s.sessions, auth.NewArgon2idCipher(), auth.NewOpaqueIssuer(), tx,
		auth.WithManagerClock(clock))
	Expect(err).NotTo(HaveOccurred())
	s.guard, err = auth.NewAuthorizationGuard(s.sessions, s.users, auth.WithPolicy(policy), auth.WithGuardClock(clock))
	Expect(err).NotTo(HaveOccurred())
	s.questions, err = question.NewService(s.guard, questionpg.NewQuestionRepository(pool), tx, nil)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var alice = auth.RegisterInput{
	Username: "alice",
	Email:    "a@x.io",
	Password: "s3cret",
	Profile:  auth.Profile{FirstName: "Alice", Country: "NZ"},
}

var _ = Describe("Session core on PostgreSQL", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		truncate(ctx)
	})

	It("walks a user through sign-up, sign-in, a question and sign-out", func() {
		svc := newServices(auth.PolicyStrict)

		user, err := svc.manager.Register(ctx, alice)
		Expect(err).NotTo(HaveOccurred())

		stored, err := svc.users.GetByUsername(ctx, "alice")
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.ID).To(Equal(user.ID))
		Expect(stored.Profile.Country).To(Equal("NZ"))
		Expect(stored.Role).To(Equal(auth.RoleNonAdmin))

		_, err = svc.manager.Register(ctx, auth.RegisterInput{Username: "alice", Email: "b@x.io", Password: "pw"})
		Expect(auth.KindOf(err)).To(Equal(auth.KindDuplicateUsername))
		_, err = svc.manager.Register(ctx, auth.RegisterInput{Username: "bob", Email: alice.Email, Password: "pw"})
		Expect(auth.KindOf(err)).To(Equal(auth.KindDuplicateEmail))

		_, err = svc.users.GetByUsername(ctx, "ALICE")
		Expect(err).To(MatchError(auth.ErrNotFound))
		_, err = svc.manager.Register(ctx, auth.RegisterInput{Username: "ALICE", Email: "ALICE@X.IO", Password: "pw"})
		Expect(err).NotTo(HaveOccurred(), "unique constraints compare case exactly")

		_, err = svc.manager.Authenticate(ctx, "alice", "wrong")
		Expect(auth.KindOf(err)).To(Equal(auth.KindBadCredentials))

		session, err := svc.manager.Authenticate(ctx, "alice", "s3cret")
		Expect(err).NotTo(HaveOccurred())
		Expect(session.ExpiresAt).To(Equal(svc.now.Add(auth.SessionTTL)))

		reloaded, err := svc.users.GetByID(ctx, user.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(reloaded.LastLoginAt).NotTo(BeNil())

		q, err := svc.questions.Create(ctx, session.AccessToken, "What is MVCC?")
		Expect(err).NotTo(HaveOccurred())
		Expect(q.UserID).To(Equal(user.ID))

		owner, err := svc.manager.Terminate(ctx, session.AccessToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(owner.ID).To(Equal(user.ID))

		_, err = svc.guard.Authorize(ctx, session.AccessToken)
		Expect(auth.KindOf(err)).To(Equal(auth.KindSessionInactive))
	})

	It("accepts a terminated session under the existence policy", func() {
		svc := newServices(auth.PolicyExistence)
		_, err := svc.manager.Register(ctx, alice)
		Expect(err).NotTo(HaveOccurred())
		session, err := svc.manager.Authenticate(ctx, "alice", "s3cret")
		Expect(err).NotTo(HaveOccurred())
		_, err = svc.manager.Terminate(ctx, session.AccessToken)
		Expect(err).NotTo(HaveOccurred())

		svc.now = svc.now.Add(24 * time.Hour)
		_, err = svc.guard.Authorize(ctx, session.AccessToken)
		Expect(err).NotTo(HaveOccurred())
	})

	It("lets exactly one concurrent registration of a username succeed", func() {
		svc := newServices(auth.PolicyStrict)
		const racers = 8

		var wg sync.WaitGroup
		errs := make([]error, racers)
		for i := range racers {
			wg.Add(1)
			go func(idx int) {
				defer GinkgoRecover()
				defer wg.Done()
				_, errs[idx] = svc.manager.Register(ctx, auth.RegisterInput{
					Username: "racer",
					Email:    fmt.Sprintf("racer%d@x.io", idx),
					Password: "pw",
				})
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			Expect(auth.KindOf(err)).To(Equal(auth.KindDuplicateUsername))
		}
		Expect(succeeded).To(Equal(1))
	})

	It("leaves no question behind when authorization fails", func() {
		svc := newServices(auth.PolicyStrict)
		_, err := svc.questions.Create(ctx, "never-issued", "Why?")
		Expect(auth.KindOf(err)).To(Equal(auth.KindUnauthenticated))

		var count int
		Expect(pool.QueryRow(ctx, `SELECT count(*) FROM questions`).Scan(&count)).To(Succeed())
		Expect(count).To(BeZero())
	})
})
