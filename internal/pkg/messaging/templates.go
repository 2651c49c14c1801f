package messaging

import "fmt"

// WelcomeMessage greets a first-time student and confirms the email on file.
func WelcomeMessage(name, email string) string {
	return fmt.Sprintf("Welcome %s! 🎉 Parabéns pela excelente decisão!\n\n"+
		"Tenho certeza de que será uma experiência incrível para você!\n"+
		"Sou Marcello, seu ponto de contato para tudo o que precisar.\n\n"+
		"Vi que seu e-mail cadastrado é %s. Você deseja usá-lo para tudo ou prefere trocar?", name, email)
}

// RenewalMessage thanks a returning student.
func RenewalMessage(name string) string {
	return fmt.Sprintf("Olá %s, parabéns pela escolha de continuar seus estudos. "+
		"Tenho certeza de que a continuação dessa jornada será incrível. "+
		"Se precisar de algo, pode contar com a gente! Rumo à fluência!", name)
}

// MessageFor picks the variant for a new or returning student.
func MessageFor(isNew bool, name, email string) string {
	if isNew {
		return WelcomeMessage(name, email)
	}
	return RenewalMessage(name)
}
