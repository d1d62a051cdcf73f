package mailer

import (
	"fmt"
	"os"

	"savoro_back_end/internal/models"
)

func statusEmailSubject(status string) string {
	switch status {
	case models.OrderProcessing:
		return "✅ Paiement confirmé - Savoro"
	case models.OrderShipped:
		return "🛵 Votre commande est en route - Savoro"
	case models.OrderDelivered:
		return "🎉 Votre commande a été livrée - Savoro"
	case models.OrderCancelled:
		return "❌ Commande annulée - Savoro"
	default:
		return "📋 Mise à jour de votre commande - Savoro"
	}
}

func statusMessage(status string) string {
	switch status {
	case models.OrderProcessing:
		return "Votre paiement a été confirmé, nos cuisines préparent votre commande."
	case models.OrderShipped:
		return "Votre commande a quitté nos cuisines et arrive chez vous."
	case models.OrderDelivered:
		return "Votre commande a été livrée. Bon appétit !"
	case models.OrderCancelled:
		return "Votre commande a été annulée. Les articles ont été remis en stock."
	default:
		return "Le statut de votre commande a été mis à jour."
	}
}

func statusEmailHTML(order models.Order, status string) string {
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Mise à jour de commande</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Mise à jour de votre commande</h2>
		<p>Bonjour,</p>
		<p>%s</p>
		<p>Commande <strong>%s</strong> — nouveau statut : <strong>%s</strong></p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Savoro</strong>
		</p>
	</div>
</body>
</html>`, statusMessage(status), order.ID.Hex(), status)
}

func orderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
			</tr>`, item.Name, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Confirmation de commande</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Confirmation de votre commande</h2>
		<p>Bonjour,</p>
		<p>Votre commande a bien été enregistrée. Livraison estimée : %s.</p>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Article</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%.2f</td>
				</tr>
			</tfoot>
		</table>
		<p>Adresse de livraison : %s</p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Savoro</strong>
		</p>
	</div>
</body>
</html>`, order.EstimatedDelivery.Format("15:04"), itemsHTML, order.TotalAmount, order.DeliveryAddress)
}

func passwordResetHTML(token string) string {
	baseURL := os.Getenv("FRONTEND_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"><title>Réinitialisation du mot de passe</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #333;">Réinitialisation de votre mot de passe</h2>
		<p>Bonjour,</p>
		<p>Cliquez sur le lien ci-dessous pour choisir un nouveau mot de passe.
		Ce lien expire dans une heure.</p>
		<p><a href="%s/reset-password?token=%s">Réinitialiser mon mot de passe</a></p>
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Savoro</strong>
		</p>
	</div>
</body>
</html>`, baseURL, token)
}
