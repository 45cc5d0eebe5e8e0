package i18n

// builtinBundles holds every shipped language. English is the reference bundle;
// all other bundles fall back to it key-by-key.
var builtinBundles = map[string]Bundle{
	"English": {
		KeyMenu: `Hi, I'm *Venille AI*, your private menstrual & sexual-health companion.

Reply with the *number* **or** the *words*:

1️⃣  Track my period
2️⃣  Log symptoms
3️⃣  Learn about sexual health
4️⃣  Order Venille Pads
5️⃣  View my cycle
6️⃣  View my symptoms
7️⃣  Change language
8️⃣  Give feedback / report a problem`,

		KeyFallback:     "Sorry, I didn't get that.\nType *menu* to see what I can do.",
		KeyTrackPrompt:  "🩸 When did your last period start? (e.g. 12/05/2025)",
		KeyLangPrompt:   "Type your preferred language (e.g. English, Hausa…)",
		KeySavedSymptom: "Saved ✔︎ — send another, or type *done*.",
		KeyAskReminder:  "✅ Saved! Your next period is likely around *{0}*.\nWould you like a reminder? (yes / no)",
		KeyReminderYes:  "🔔 Reminder noted! I'll message you a few days before.",
		KeyReminderNo:   "👍 No problem – ask me any time.",
		KeyReminderDue:  "🩸 Heads up! Your next period is likely around *{0}*.\nTake good care of yourself ❤️",
		KeyInvalidDate:  "🙈 Please type the date like *12/05/2025*",
		KeyNotValidDate: "🤔 That doesn't look like a valid date.",
		KeySymptomsDone: "✅ {0} symptom{1} saved. Feel better soon ❤️",
		KeySymptomsCancel:       "🚫 Cancelled.",
		KeySymptomsNothingSaved: "Okay, nothing saved.",
		KeySymptomPrompt:        "How are you feeling? Send one symptom at a time.\nWhen done, type *done* (or *cancel*).",
		KeyEduTopics: `What topic?

1️⃣  STIs
2️⃣  Contraceptives
3️⃣  Consent
4️⃣  Hygiene during menstruation
5️⃣  Myths and Facts`,
		KeyLanguageSet: "🔤 Language set to *{0}*.",
		KeyNoPeriod:    "No period date recorded yet.",
		KeyCycleInfo: `📅 *Your cycle info:*
• Last period: *{0}*
• Predicted next: *{1}*`,
		KeyNoSymptoms:      "No symptoms logged yet.",
		KeySymptomsHistory: "*Your symptom history (last 5):*\n{0}",
		KeyFeedbackQ1:      "Did you have access to sanitary pads this month?\n1. Yes   2. No",
		KeyFeedbackQ2:      `Thanks. What challenges did you face? (or type "skip")`,
		KeyFeedbackThanks:  "❤️  Feedback noted — thank you!",
		KeyOrderQuantityPrompt:  "How many packs of *Venille Pads* would you like to order?",
		KeyOrderQuantityInvalid: "Please enter a *number* between 1 and 99, e.g. 3",
		KeyOrderConfirmation: `✅ Your order for *{0} pack{1}* has been forwarded.

Tap the link below to chat directly with our sales team and confirm delivery:
{2}

Thank you for choosing Venille!`,
		KeyOrderVendorMessage: `🆕 *Venille Pads order*

From : {0}
JID  : {1}
Qty  : {2} pack{3}
Ref  : {4}

(Please contact the customer to arrange delivery.)`,
	},

	"Hausa": {
		KeyMenu: `Sannu, ni ce *Venille AI*, abokiyar lafiyar jinin haila da dangantakar jima'i.

Zaɓi daga cikin waɗannan:

1️⃣  Bi jinin haila
2️⃣  Rubuta alamomin rashin lafiya
3️⃣  Koyi game da lafiyar jima'i
4️⃣  Yi odar Venille Pads
5️⃣  Duba zagayen haila
6️⃣  Duba alamun rashin lafiya
7️⃣  Sauya harshe
8️⃣  Bayar da ra'ayi / rahoto matsala`,

		KeyFallback:     "Yi hakuri, ban gane ba.\nRubuta *menu* don ganin abin da zan iya yi.",
		KeyTrackPrompt:  "🩸 Yaushe ne lokacin farkon jinin haila na ƙarshe? (e.g. 12/05/2025)",
		KeyLangPrompt:   "Rubuta harshen da kake so (misali: English, Hausa…)",
		KeySavedSymptom: "An ajiye ✔︎ — aika wani ko rubuta *done*.",
		KeyAskReminder:  "✅ An ajiye! Ana sa ran haila na gaba ne kusa da *{0}*.\nKana son aiko maka da tunatarwa? (ee / a'a)",
		KeyReminderYes:  "🔔 Tunatarwa ta samu! Zan aiko maka saƙo 'yan kwanakin kafin.",
		KeyReminderNo:   "👍 Babu damuwa - tambayi ni a kowane lokaci.",
		KeyReminderDue:  "🩸 Tunatarwa! Ana sa ran haila na gaba kusa da *{0}*.\nKula da kanki sosai ❤️",
		KeyInvalidDate:  "🙈 Da fatan za a rubuta kwanan wata kamar *12/05/2025*",
		KeyNotValidDate: "🤔 Wannan bai yi kama da kwanan wata mai kyau ba.",
		KeySymptomsDone: "✅ An ajiye alama {0}{1}. Da fatan kawo maki sauki ❤️",
		KeySymptomsCancel:       "🚫 An soke.",
		KeySymptomsNothingSaved: "To, ba a adana komai ba.",
		KeySymptomPrompt:        "Yaya jikin ki? Aika alama guda ɗaya a kowane lokaci.\nIn an gama, rubuta *done* (ko *cancel*).",
		KeyEduTopics: `Wane batun?

1️⃣  Cutar STIs
2️⃣  Hanyoyin Dakile Haihuwa
3️⃣  Yarda
4️⃣  Tsabta yayin jinin haila
5️⃣  Karin Magana da Gaskiya`,
		KeyLanguageSet: "🔤 An saita harshe zuwa *{0}*.",
		KeyNoPeriod:    "Ba a yi rijistar kwanan haila ba har yanzu.",
		KeyCycleInfo: `📅 *Bayanin zagayen haila:*
• Haila na ƙarshe: *{0}*
• Ana hasashen na gaba: *{1}*`,
		KeyNoSymptoms:      "Ba a rubuta alamun rashin lafiya ba har yanzu.",
		KeySymptomsHistory: "*Tarihin alamun rashin lafiyarki (na ƙarshe 5):*\n{0}",
		KeyFeedbackQ1:      "Shin kun samu damar samun sanitary pads a wannan watan?\n1. Ee   2. A'a",
		KeyFeedbackQ2:      `Na gode. Wane irin kalubale kuka fuskanta? (ko rubuta "skip")`,
		KeyFeedbackThanks:  "❤️  An lura da ra'ayin ku - na gode!",
		KeyOrderQuantityPrompt:  "Kwunnan *Venille Pads* nawa kuke son siyan?",
		KeyOrderQuantityInvalid: "Da fatan a shigar da *lambar* tsakanin 1 da 99, misali 3",
		KeyOrderConfirmation: `✅ An aika odar ku ta *kwunan {0}{1}*.

Danna wannan hanyar don tattaunawa kai tsaye da ma'aikatan sayarwarmu don tabbatar da isar:
{2}

Mun gode da zaɓen Venille!`,
		KeyOrderVendorMessage: `🆕 *Odar Venille Pads*

Daga : {0}
JID  : {1}
Adadi: {2} kwunan{3}
Ref  : {4}

(Da fatan a tuntuɓi masoyi don shirya isar da shi.)`,
	},
}
