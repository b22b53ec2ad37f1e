package editor

import "testing"

func TestSubscribeAndPublish(t *testing.T) {
	session := NewSession(nil)
	defer session.Close()

	ch, cancel := session.Subscribe("pages", "42")
	defer cancel()

	delivered := session.Publish(Update{Collection: "pages", ItemID: "42", Payload: map[string]any{"title": "New"}})
	if delivered != 1 {
		t.Fatalf("expected one delivery, got %d", delivered)
	}
	update := <-ch
	if update.Payload["title"] != "New" {
		t.Fatalf("unexpected update %+v", update)
	}
}

func TestPublishIsScopedToRecord(t *testing.T) {
	session := NewSession(nil)
	defer session.Close()

	_, cancelPages := session.Subscribe("pages", "42")
	defer cancelPages()
	postCh, cancelPosts := session.Subscribe("posts", "42")
	defer cancelPosts()

	if delivered := session.Publish(Update{Collection: "pages", ItemID: "42"}); delivered != 1 {
		t.Fatalf("expected only the pages subscriber, got %d deliveries", delivered)
	}
	select {
	case <-postCh:
		t.Fatal("posts subscriber must not receive pages updates")
	default:
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	first := NewSession(nil)
	defer first.Close()
	second := NewSession(nil)
	defer second.Close()

	_, cancel := first.Subscribe("pages", "42")
	defer cancel()

	if delivered := second.Publish(Update{Collection: "pages", ItemID: "42"}); delivered != 0 {
		t.Fatalf("sessions must not share subscribers, got %d deliveries", delivered)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	session := NewSession(nil)
	defer session.Close()

	ch, cancel := session.Subscribe("pages", "42")
	cancel()

	if _, open := <-ch; open {
		t.Fatal("expected channel closed after cancel")
	}
	if delivered := session.Publish(Update{Collection: "pages", ItemID: "42"}); delivered != 0 {
		t.Fatalf("expected no deliveries after cancel, got %d", delivered)
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	session := NewSession(nil)
	defer session.Close()

	_, cancel := session.Subscribe("pages", "42")
	defer cancel()

	for i := 0; i < subscriberBuffer; i++ {
		if delivered := session.Publish(Update{Collection: "pages", ItemID: "42"}); delivered != 1 {
			t.Fatalf("expected buffered delivery %d", i)
		}
	}
	if delivered := session.Publish(Update{Collection: "pages", ItemID: "42"}); delivered != 0 {
		t.Fatal("expected overflow publish to drop, not block")
	}
}

func TestCloseTearsDownSubscriptions(t *testing.T) {
	session := NewSession(nil)
	ch, _ := session.Subscribe("pages", "42")
	session.Close()

	if _, open := <-ch; open {
		t.Fatal("expected channel closed on session close")
	}
	late, _ := session.Subscribe("pages", "42")
	if _, open := <-late; open {
		t.Fatal("expected closed channel for post-close subscribe")
	}
}
