// Package linkly provides a Go client SDK for the Linkly URL shortener API.
//
// Linkly authenticates with an HTTP-only session cookie that expires. The
// client renews it transparently: when requests fail because the session
// expired, exactly one renewal exchange is performed, every affected request
// waits for it, and each is then replayed once. If renewal fails, every
// affected request fails with the same error, the stored session is dropped
// and the session-invalid listeners are notified once with the sign-in URL.
//
// Basic usage:
//
//	client, err := linkly.New(linkly.WithBaseURL("https://api.linkly.example"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if _, err := client.Login(ctx, "ann@example.com", "secret"); err != nil {
//	    log.Fatal(err)
//	}
//
//	short, err := client.Shorten(ctx, "https://example.com/some/long/path")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Short URL:", short.ShortURL)
//
// To react when the session can no longer be renewed:
//
//	unsubscribe := client.OnSessionInvalid(func(ev linkly.SessionInvalidEvent) {
//	    fmt.Println("please sign in again at", ev.SignInURL)
//	})
//	defer unsubscribe()
package linkly
