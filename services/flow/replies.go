package flow

import "fmt"

const (
	replyDateFormat        = "Please use the format YYYY-MM-DD (e.g., 2024-12-25)."
	replyDatePast          = "Please select a future date."
	replyDateInvalid       = "Invalid date format. Please try again (YYYY-MM-DD)."
	replyNightsInvalid     = "Please enter a valid number of nights (e.g., 2)."
	replyNoRooms           = "Sorry, we have no available rooms at the moment."
	replyRoomInvalid       = "Invalid selection. Please reply with the number of the room type."
	replyConfirmPrompt     = "Please reply 'yes' to confirm your booking, or type 'hi' to restart."
	replyPaymentPending    = "Your booking is pending payment. Please proceed with the payment link provided."
	replyNotUnderstood     = "I'm sorry, I didn't understand that. Type 'hi' to start over."
	replyRoomListHeader    = "Available rooms:\n"
	replyRoomListFooter    = "\nReply with the number of your choice."
	checkInDisplayLayout   = "January 2, 2006"
	checkInInputLayout     = "2006-01-02"
	confirmKeyword         = "yes"
	summaryConfirmFootnote = "Reply 'yes' to confirm or 'hi' to start over."
)

func greeting(hotelName string) string {
	return fmt.Sprintf("Welcome to %s! \nWhen would you like to check in? (YYYY-MM-DD)", hotelName)
}

func nightsPrompt(formattedDate string) string {
	return fmt.Sprintf("Got it, %s. \nHow many nights will you be staying?", formattedDate)
}

func bookingSummary(room, checkIn string, nights int, total string) string {
	return fmt.Sprintf("Booking Summary:\nRoom: %s\nCheck-in: %s\nNights: %d\nTotal: %s\n\n%s",
		room, checkIn, nights, total, summaryConfirmFootnote)
}

func bookingConfirmed(bookingID, total, link string) string {
	return fmt.Sprintf("Booking confirmed! Your reference is #%s.\nPlease make a payment of %s to secure your reservation.\nPay here: %s",
		bookingID, total, link)
}
