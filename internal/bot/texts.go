package bot

// Reply keyboard labels. Incoming text is matched against them exactly.
const (
	ButtonCalc      = "🚚 Расчет логистики"
	ButtonCalcAgain = "🚚 Еще расчет"
	ButtonAsk       = "🤖 Вопросы ВЭД"
)

// Messages use Telegram legacy Markdown.
const (
	textStart = "🚚 *СУПЕР-БОТ Логистика + ВЭД*\n\n" +
		"• *🚚 Расчет логистики* — Китай-Россия\n" +
		"• *🤖 Вопросы ВЭД* — таможня, документы\n\n" +
		"*✅ Отвечает на каждый вопрос ПОЛНОСТЬЮ!*"

	textAskIntro = "✅ *Я готов ответить на любой вопрос!*\n\n" +
		"Задайте вопрос по:\n" +
		"• Импорт/экспорт\n" +
		"• Таможня, код ТНВЭД\n" +
		"• Документы, INCOTERMS\n" +
		"• Сертификация продукции\n\n" +
		"*Пример:* 'Нужен ли сертификат для текстиля из Китая?'"

	textPromptOrigin      = "📍 *Откуда забирать груз?*"
	textPromptDestination = "📍 *Куда везти?*"
	textPromptWeight      = "⚖️ *Вес (кг)?* Примеры: 150, 150,5"
	textPromptVolume      = "📦 *Объем (м³)?* Примеры: 0,5"
	textPromptPlaces      = "🔢 *Количество мест?*"

	textBadWeight = "❌ Число! Пример: 150,5"
	textBadVolume = "❌ Число! Пример: 0,5"
	textBadPlaces = "❌ Целое число для мест!"

	textBackToMenu = "↩️ Вернулся в главное меню"

	textQuote = "🚚 *РАСЧЕТ ЛОГИСТИКИ*\n\n" +
		"📍 %s → %s\n\n" +
		"⚖️ %.1f кг | 📦 %.2f м³ | 🔢 %d мест\n\n" +
		"🛕 *ДО МАНЧЖУРИИ:* %.0f USD\n" +
		"🇨🇳 *ИЗ МАНЧЖУРИИ:* %.0f USD\n\n" +
		"💎 *ИТОГО: %.0f USD*"
	textContact            = "Для уточнения напиши %s"
	textTariffsUnavailable = "⚠️ Тарифы временно недоступны. Попробуйте отправить количество мест позже."

	textThinking   = "🤖 *Готовлю ответ...*"
	textAskFailed  = "❌ Не удалось подготовить ответ, попробуйте позже."
	textTesting    = "🧪 Тестирую..."
	textTestOK     = "✅ *ИИ РАБОТАЕТ!*\n%s"
	textTestFailed = "❌ %s"
	textCleared    = "🧹 *Чат очищен!*"
	textStatus     = "📊 *✅ Полные ответы на каждый вопрос!*"

	textRates = "📋 *Текущие тарифы*\n\n" +
		"До Манчжурии: %s USD/м³\n" +
		"Из Манчжурии: %s USD/м³\n" +
		"Плотность: %s кг/м³\n\n" +
		"Файл: `%s`"
	textRatesFailed = "❌ Не удалось прочитать тарифы: %s"
	textAdminOnly   = "⛔ Команда доступна только администратору."
	textMediaOnly   = "📝 Отправьте вопрос текстом."
)
