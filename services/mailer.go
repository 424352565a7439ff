package services

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"acropolis-estates-server/models"
	"acropolis-estates-server/utils"

	"github.com/wneessen/go-mail"
)

// Mailer sends guest-facing booking emails over SMTP. A nil Mailer (missing
// SMTP configuration) drops emails with a log line instead of failing
// bookings.
type Mailer struct {
	host      string
	port      int
	user      string
	password  string
	fromName  string
	fromEmail string
}

func NewMailerFromEnv() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		log.Println("Warning: SMTP_HOST not set, booking emails disabled")
		return nil
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	fromEmail := os.Getenv("SMTP_FROM_EMAIL")
	if fromEmail == "" {
		fromEmail = os.Getenv("SMTP_USER")
	}
	return &Mailer{
		host:      host,
		port:      port,
		user:      os.Getenv("SMTP_USER"),
		password:  os.Getenv("SMTP_PASSWORD"),
		fromName:  "Acropolis Estates",
		fromEmail: fromEmail,
	}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.user),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSend(msg)
}

// SendBookingRequest mails the guest their booking request summary.
// Fire-and-forget: runs in its own goroutine, logs failures.
func (m *Mailer) SendBookingRequest(booking *models.Booking, listing *models.Listing) {
	if m == nil {
		log.Printf("email disabled, skipping booking request mail for %s", booking.ReferenceNumber)
		return
	}
	subject := "Booking Request – Acropolis Estates"
	if booking.Language == "el" {
		subject = "Αίτημα Κράτησης – Acropolis Estates"
	}
	go m.deliver(booking, listing, subject, "received")
}

// SendBookingConfirmed mails the guest once the office confirms the stay.
func (m *Mailer) SendBookingConfirmed(booking *models.Booking, listing *models.Listing) {
	if m == nil {
		log.Printf("email disabled, skipping confirmation mail for %s", booking.ReferenceNumber)
		return
	}
	subject := "Booking Confirmed – Acropolis Estates"
	if booking.Language == "el" {
		subject = "Επιβεβαίωση Κράτησης – Acropolis Estates"
	}
	go m.deliver(booking, listing, subject, "confirmed")
}

func (m *Mailer) deliver(booking *models.Booking, listing *models.Listing, subject, kind string) {
	body := bookingEmailBody(booking, listing, kind)
	if err := m.send(booking.Email, subject, body); err != nil {
		utils.AppMetrics.EmailFailures.Inc()
		log.Printf("failed to send %s email for booking %s: %v", kind, booking.ReferenceNumber, err)
	}
}

func bookingEmailBody(b *models.Booking, l *models.Listing, kind string) string {
	title := l.Title
	if b.Language == "el" && l.TitleGr != "" {
		title = l.TitleGr
	}
	if title == "" {
		title = fmt.Sprintf("Property ST%06d", l.ID)
	}

	cur := l.Currency
	row := func(label string, amount float64) string {
		return fmt.Sprintf("<tr><td>%s</td><td>%.2f %s</td></tr>", label, amount, cur)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h2>%s %s,</h2>", greeting(b.Language), b.FirstName))
	sb.WriteString(fmt.Sprintf("<p>%s</p>", intro(b.Language, kind)))
	sb.WriteString(fmt.Sprintf("<p><strong>%s</strong><br>%s → %s · %d %s · %s %s</p>",
		title,
		b.CheckIn.Format("02/01/2006"), b.CheckOut.Format("02/01/2006"),
		b.Adults+b.Children, guestsWord(b.Language),
		refWord(b.Language), b.ReferenceNumber))
	sb.WriteString("<table>")
	sb.WriteString(row("Subtotal", b.Subtotal))
	if b.HasDiscount {
		sb.WriteString(row("Discount", -b.DiscountAmount))
	}
	sb.WriteString(row("VAT", b.VAT))
	sb.WriteString(row("Municipality tax", b.MunicipalityTax))
	sb.WriteString(row("Climate crisis fee", b.ClimateCrisisFee))
	if b.CleaningFee > 0 {
		sb.WriteString(row("Cleaning fee", b.CleaningFee))
	}
	if b.ServiceFee > 0 {
		sb.WriteString(row("Service fee", b.ServiceFee))
	}
	sb.WriteString(row("Total", b.TotalPrice))
	sb.WriteString("</table>")
	return sb.String()
}

func greeting(lang string) string {
	if lang == "el" {
		return "Αγαπητέ/ή"
	}
	return "Dear"
}

func intro(lang, kind string) string {
	if kind == "confirmed" {
		if lang == "el" {
			return "Η κράτησή σας επιβεβαιώθηκε."
		}
		return "Your booking has been confirmed."
	}
	if lang == "el" {
		return "Λάβαμε το αίτημα κράτησής σας και θα επικοινωνήσουμε σύντομα μαζί σας."
	}
	return "We received your booking request and will get back to you shortly."
}

func guestsWord(lang string) string {
	if lang == "el" {
		return "επισκέπτες"
	}
	return "guests"
}

func refWord(lang string) string {
	if lang == "el" {
		return "Κωδικός"
	}
	return "Reference"
}
