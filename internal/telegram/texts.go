package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// UI texts in English
const (
	startFmt = "👋 Hi!\n\n" +
		"This bot sells access to the private channel.\n" +
		"💰 Price: %d %s\n\n" +
		"How it works:\n" +
		"1) Tap \"Pay\"\n" +
		"2) Complete the payment by the link\n" +
		"3) Tap \"Check payment\"\n" +
		"4) Tap \"Get access\"\n\n" +
		"Want announcements? Turn on the newsletter 🔔"
	menuText   = "Menu 👇"
	whoamiFmt  = "Your user_id: %d"
	statsFmt   = "📊 Database:\nTotal users: %d\nNewsletter subscribers: %d"
	noAccess   = "⛔ No access."
	subOnText  = "🔔 Newsletter enabled."
	subOffText = "🔕 Newsletter disabled."

	payCreatedFmt = "💳 Payment created!\n\n" +
		"1) Pay by the link:\n%s\n\n" +
		"2) Then tap \"Check payment\" ✅\n" +
		"3) And \"Get access\" 🔗\n\n" +
		"🧾 Payment ID: %s"
	payFailedFmt = "❌ Could not create a payment.\nReason: %v"

	checkFirstPay    = "❗ Create a payment first: tap \"Pay\"."
	checkFailedFmt   = "❌ Payment check failed:\n%v"
	checkConfirmed   = "✅ Payment confirmed!\nTap \"Get access\" 🔗"
	checkInProgress  = "⏳ Payment is still processing.\nWait 10–30 seconds and tap \"Check payment\" again."
	checkOtherFmt    = "⚠️ Payment status: %s\nIf the payment did not go through, create a new one with \"Pay\"."
	accessNotYours   = "❌ This payment is not yours. Create a new one with \"Pay\"."
	accessNotPaidFmt = "⛔ Payment not confirmed yet (status: %s).\nTap \"Check payment\" ✅"
	accessGrantedFmt = "🎉 Access granted!\nHere is your link to the private channel:\n%s"
	accessGrantErr   = "✅ Payment confirmed, but I cannot issue a channel link.\nReason: %v\n\n" +
		"Check:\n• the bot is a channel admin\n• it may create invite links"

	broadcastUsage     = "Usage:\n/broadcast Announcement text"
	broadcastHereUsage = "Usage: reply to a message with /broadcast_here"
	broadcastEmpty     = "No newsletter subscribers yet (nobody tapped 🔔)."
	broadcastStartFmt  = "📣 Broadcast started: %d subscribers..."
	broadcastCopyFmt   = "📎 Broadcasting a message copy: %d subscribers..."
	broadcastDoneFmt   = "✅ Broadcast finished.\nDelivered: %d\nBlocked the bot/unreachable: %d\nErrors: %d"
	broadcastFailed    = "❌ Broadcast failed to start. Check the logs."
)

// menuKeyboard builds the main inline menu. The newsletter button label
// follows the current subscription state.
func menuKeyboard(subscribed bool) tgbotapi.InlineKeyboardMarkup {
	toggle := "🔔 Subscribe to newsletter"
	if subscribed {
		toggle = "🔕 Unsubscribe"
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Pay", "pay"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Check payment", "check"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔗 Get access", "access"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(toggle, "toggle_sub"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🆘 Support", "support"),
		),
	)
}
